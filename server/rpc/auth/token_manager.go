/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

// Package auth verifies the identity a session claims when joining a
// document.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yorkie-team/coedit/pkg/cache"
	"github.com/yorkie-team/coedit/pkg/errors"
)

const (
	// DefaultTokenDuration is the lifetime of tokens issued by Generate.
	DefaultTokenDuration = 24 * time.Hour

	// verifiedCacheSize is the number of verified tokens remembered.
	verifiedCacheSize = 5000

	// AdminRole is the role claim of tokens that may read the admin endpoints.
	AdminRole = "admin"

	// verifiedCacheTTL bounds how long a verified token is remembered. The
	// expiry of the token bounds it further.
	verifiedCacheTTL = time.Minute
)

var (
	// ErrUnexpectedSigningMethod is returned when the signing method is unexpected.
	ErrUnexpectedSigningMethod = fmt.Errorf("unexpected signing method")

	// ErrMissingToken is returned when a join carries no token.
	ErrMissingToken = errors.Unauthenticated("missing token").WithCode("ErrMissingToken")

	// ErrInvalidToken is returned when a token cannot be parsed or verified.
	ErrInvalidToken = errors.Unauthenticated("invalid token").WithCode("ErrInvalidToken")

	// ErrSubjectMismatch is returned when the token was issued to another user.
	ErrSubjectMismatch = errors.PermissionDenied("token subject does not match user").WithCode("ErrSubjectMismatch")

	// ErrNotAdmin is returned when a valid token does not carry the admin role.
	ErrNotAdmin = errors.PermissionDenied("token does not grant admin access").WithCode("ErrNotAdmin")
)

// UserClaims is a JWT claims struct for a user. The subject is the user id.
type UserClaims struct {
	jwt.RegisteredClaims

	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// TokenManager issues and verifies join tokens. Verified tokens are
// remembered so that rejoins and reconnects skip the signature check.
type TokenManager struct {
	secretKey     string
	tokenDuration time.Duration

	now      func() time.Time
	verified *cache.LRUExpireCache[verifiedKey, string]
}

type verifiedKey struct {
	token  string
	userID string
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	verified, err := cache.NewLRUExpireCache[verifiedKey, string](verifiedCacheSize)
	if err != nil {
		// verifiedCacheSize is positive.
		panic(err)
	}

	return &TokenManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
		now:           time.Now,
		verified:      verified,
	}
}

// Generate generates a new token for the user.
func (m *TokenManager) Generate(userID, userName string) (string, error) {
	return m.generate(userID, userName, "")
}

// GenerateAdmin generates a new token that grants access to the admin
// endpoints. The subject only identifies the operator in logs.
func (m *TokenManager) GenerateAdmin(subject string) (string, error) {
	return m.generate(subject, "", AdminRole)
}

func (m *TokenManager) generate(subject, name, role string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
		Name: name,
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

// Verify verifies that the token was issued to userID and returns the name
// it carries.
func (m *TokenManager) Verify(token, userID string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	key := verifiedKey{token: token, userID: userID}
	if name, ok := m.verified.Get(key); ok {
		return name, nil
	}

	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}

	if claims.Subject != userID {
		return "", fmt.Errorf("subject %q, user %q: %w", claims.Subject, userID, ErrSubjectMismatch)
	}

	ttl := verifiedCacheTTL
	if claims.ExpiresAt != nil {
		ttl = min(ttl, claims.ExpiresAt.Sub(m.now()))
	}
	m.verified.Add(key, claims.Name, ttl)

	return claims.Name, nil
}

// VerifyAdmin verifies that the token carries the admin role and returns its
// subject.
func (m *TokenManager) VerifyAdmin(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Role != AdminRole {
		return "", fmt.Errorf("subject %q: %w", claims.Subject, ErrNotAdmin)
	}

	return claims.Subject, nil
}

func (m *TokenManager) parse(token string) (*UserClaims, error) {
	claims := &UserClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: %w", token.Method.Alg(), ErrUnexpectedSigningMethod)
		}
		return []byte(m.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, fmt.Errorf("parse token: %s: %w", err.Error(), ErrInvalidToken)
	}

	return claims, nil
}
