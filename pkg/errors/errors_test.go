/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	coerrors "github.com/yorkie-team/coedit/pkg/errors"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name   string
		code   coerrors.StatusCode
		str    string
		http   int
		client bool
	}{
		{"InvalidArgument", coerrors.ErrCodeInvalidArgument, "invalid_argument", http.StatusBadRequest, true},
		{"NotFound", coerrors.ErrCodeNotFound, "not_found", http.StatusNotFound, true},
		{"AlreadyExists", coerrors.ErrCodeAlreadyExists, "already_exists", http.StatusConflict, true},
		{"PermissionDenied", coerrors.ErrCodePermissionDenied, "permission_denied", http.StatusForbidden, true},
		{"ResourceExhausted", coerrors.ErrCodeResourceExhausted, "resource_exhausted", http.StatusTooManyRequests, true},
		{"Internal", coerrors.ErrCodeInternal, "internal", http.StatusInternalServerError, false},
		{"Unavailable", coerrors.ErrCodeUnavailable, "unavailable", http.StatusServiceUnavailable, false},
		{"Unauthenticated", coerrors.ErrCodeUnauthenticated, "unauthenticated", http.StatusUnauthorized, true},
		{"Unknown", coerrors.StatusCode(999), "code_999", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.code.String())
			assert.Equal(t, tt.http, tt.code.HTTPStatus())
			assert.Equal(t, tt.client, tt.code.IsClientError())
		})
	}
}

func TestStatusOf(t *testing.T) {
	t.Run("wrapped status error test", func(t *testing.T) {
		base := coerrors.PermissionDenied("origin not allowed").WithCode("ErrOriginNotAllowed")
		wrapped := fmt.Errorf("admit %s: %w", "https://evil.example", base)
		twice := fmt.Errorf("upgrade: %w", wrapped)

		assert.Equal(t, coerrors.ErrCodePermissionDenied, coerrors.StatusOf(twice))
		assert.Equal(t, "ErrOriginNotAllowed", coerrors.CodeOf(twice))
		assert.True(t, coerrors.IsStatus(twice, coerrors.ErrCodePermissionDenied))
		assert.True(t, coerrors.Is(twice, base))
	})

	t.Run("standard error test", func(t *testing.T) {
		err := errors.New("standard error")
		assert.Equal(t, coerrors.StatusCode(0), coerrors.StatusOf(err))
		assert.Equal(t, "", coerrors.CodeOf(err))
		assert.Equal(t, coerrors.StatusCode(0), coerrors.StatusOf(nil))
		assert.False(t, coerrors.IsStatus(nil, coerrors.ErrCodeNotFound))
	})

	t.Run("with code keeps status and message test", func(t *testing.T) {
		err := coerrors.Unauthenticated("token expired").WithCode("ErrInvalidToken")
		assert.Equal(t, "token expired", err.Error())
		assert.Equal(t, coerrors.ErrCodeUnauthenticated, err.Status())
		assert.Equal(t, "ErrInvalidToken", err.Code())

		var statusErr coerrors.StatusError
		assert.True(t, coerrors.As(fmt.Errorf("join: %w", err), &statusErr))
		assert.Equal(t, "ErrInvalidToken", statusErr.Code())
	})
}
