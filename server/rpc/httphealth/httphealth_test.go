/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
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

package httphealth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/server/rpc/httphealth"
)

func TestHealthHandler(t *testing.T) {
	serve := func(checker httphealth.Checker, method string) *httptest.ResponseRecorder {
		path, handler := httphealth.NewHandler(checker)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("serving test", func(t *testing.T) {
		rec := serve(httphealth.CheckerFunc(func(context.Context) error { return nil }), http.MethodGet)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp httphealth.CheckResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, httphealth.StatusServing, resp.Status)
	})

	t.Run("not serving test", func(t *testing.T) {
		rec := serve(httphealth.CheckerFunc(func(context.Context) error {
			return errors.New("closed")
		}), http.MethodGet)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), httphealth.StatusNotServing)
	})

	t.Run("head has no body test", func(t *testing.T) {
		rec := serve(httphealth.CheckerFunc(func(context.Context) error { return nil }), http.MethodHead)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("method not allowed test", func(t *testing.T) {
		rec := serve(httphealth.CheckerFunc(func(context.Context) error { return nil }), http.MethodPost)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
