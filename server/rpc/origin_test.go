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

package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/rpc"
)

func TestOriginPolicy(t *testing.T) {
	t.Run("development admits everything test", func(t *testing.T) {
		policy := rpc.NewOriginPolicy(&rpc.Config{})
		assert.NoError(t, policy.Admit(""))
		assert.NoError(t, policy.Admit("https://evil.example"))
	})

	t.Run("production policy test", func(t *testing.T) {
		policy := rpc.NewOriginPolicy(&rpc.Config{
			Production:     true,
			AllowedOrigins: []string{"https://app.coedit.io", " https://www.coedit.io "},
			ManagedDomain:  "coedit.io",
		})

		tests := []struct {
			origin  string
			allowed bool
		}{
			{"", true},
			{"https://app.coedit.io", true},
			{"https://www.coedit.io", true},
			{"https://docs.acme.com", true},
			{"https://evil.coedit.io", false},
			{"http://app.coedit.io", false},
		}
		for _, tt := range tests {
			t.Run(tt.origin, func(t *testing.T) {
				err := policy.Admit(tt.origin)
				if tt.allowed {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, rpc.ErrOriginNotAllowed)
				assert.Equal(t, 403, errors.StatusOf(err).HTTPStatus())
			})
		}
	})

	t.Run("production without managed domain test", func(t *testing.T) {
		policy := rpc.NewOriginPolicy(&rpc.Config{
			Production:     true,
			AllowedOrigins: []string{"https://app.example.com"},
		})
		assert.NoError(t, policy.Admit("https://app.example.com"))
		assert.Error(t, policy.Admit("https://docs.acme.com"))
	})
}

func TestConfig(t *testing.T) {
	valid := rpc.Config{
		Port:            8080,
		Path:            "/collab",
		MaxMessageBytes: 65536,
		WriteTimeout:    "10s",
		PingInterval:    "25s",
		SendQueueSize:   256,
	}
	assert.NoError(t, valid.Validate())

	scenarios := []struct {
		mutate   func(c *rpc.Config)
		expected error
	}{
		{func(c *rpc.Config) { c.Port = 0 }, rpc.ErrInvalidRPCPort},
		{func(c *rpc.Config) { c.Path = "collab" }, rpc.ErrInvalidPath},
		{func(c *rpc.Config) { c.MaxMessageBytes = 0 }, rpc.ErrInvalidMaxMessageBytes},
		{func(c *rpc.Config) { c.WriteTimeout = "soon" }, rpc.ErrInvalidWriteTimeout},
		{func(c *rpc.Config) { c.PingInterval = "0s" }, rpc.ErrInvalidPingInterval},
		{func(c *rpc.Config) { c.SendQueueSize = -1 }, rpc.ErrInvalidSendQueueSize},
	}
	for _, scenario := range scenarios {
		conf := valid
		scenario.mutate(&conf)
		assert.ErrorIs(t, conf.Validate(), scenario.expected)
	}
}
