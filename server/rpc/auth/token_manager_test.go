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

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/rpc/auth"
)

func TestTokenManager(t *testing.T) {
	manager := auth.NewTokenManager("secret", time.Hour)

	t.Run("verify issued token test", func(t *testing.T) {
		token, err := manager.Generate("u1", "Alice")
		require.NoError(t, err)

		name, err := manager.Verify(token, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", name)
	})

	t.Run("verified token is remembered per user test", func(t *testing.T) {
		token, err := manager.Generate("u1", "Alice")
		require.NoError(t, err)

		for range 3 {
			name, err := manager.Verify(token, "u1")
			require.NoError(t, err)
			assert.Equal(t, "Alice", name)
		}

		// A remembered token still belongs to its subject only.
		_, err = manager.Verify(token, "u2")
		assert.ErrorIs(t, err, auth.ErrSubjectMismatch)
	})

	t.Run("subject mismatch test", func(t *testing.T) {
		token, err := manager.Generate("u1", "Alice")
		require.NoError(t, err)

		_, err = manager.Verify(token, "u2")
		assert.ErrorIs(t, err, auth.ErrSubjectMismatch)
		assert.True(t, errors.IsStatus(err, errors.ErrCodePermissionDenied))
	})

	t.Run("invalid tokens test", func(t *testing.T) {
		_, err := manager.Verify("", "u1")
		assert.ErrorIs(t, err, auth.ErrMissingToken)

		_, err = manager.Verify("not-a-jwt", "u1")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		other, err := auth.NewTokenManager("other-secret", time.Hour).Generate("u1", "Alice")
		require.NoError(t, err)
		_, err = manager.Verify(other, "u1")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)

		expired, err := auth.NewTokenManager("secret", -time.Minute).Generate("u1", "Alice")
		require.NoError(t, err)
		_, err = manager.Verify(expired, "u1")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeUnauthenticated))
	})

	t.Run("verify admin token test", func(t *testing.T) {
		token, err := manager.GenerateAdmin("ops")
		require.NoError(t, err)

		subject, err := manager.VerifyAdmin(token)
		require.NoError(t, err)
		assert.Equal(t, "ops", subject)

		user, err := manager.Generate("u1", "Alice")
		require.NoError(t, err)
		_, err = manager.VerifyAdmin(user)
		assert.ErrorIs(t, err, auth.ErrNotAdmin)
		assert.True(t, errors.IsStatus(err, errors.ErrCodePermissionDenied))

		_, err = manager.VerifyAdmin("")
		assert.ErrorIs(t, err, auth.ErrMissingToken)

		forged, err := auth.NewTokenManager("other-secret", time.Hour).GenerateAdmin("ops")
		require.NoError(t, err)
		_, err = manager.VerifyAdmin(forged)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unexpected signing method test", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Verify(signed, "u1")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
