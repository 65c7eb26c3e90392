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

package rpc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/yorkie-team/coedit/pkg/errors"
)

var (
	// ErrOriginNotAllowed is returned when the origin of an upgrade request is
	// refused by the production policy.
	ErrOriginNotAllowed = errors.PermissionDenied("origin not allowed").WithCode("ErrOriginNotAllowed")
)

// OriginPolicy decides which origins may open a websocket.
type OriginPolicy struct {
	production    bool
	allowed       map[string]struct{}
	managedDomain string
}

// NewOriginPolicy creates the policy of the given config.
func NewOriginPolicy(conf *Config) *OriginPolicy {
	allowed := make(map[string]struct{}, len(conf.AllowedOrigins))
	for _, origin := range conf.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return &OriginPolicy{
		production:    conf.Production,
		allowed:       allowed,
		managedDomain: conf.ManagedDomain,
	}
}

// Admit returns nil when the origin may connect. Outside production every
// origin is admitted. In production, an empty origin, a listed origin, or an
// origin outside the managed domain is admitted.
func (p *OriginPolicy) Admit(origin string) error {
	if !p.production || origin == "" {
		return nil
	}

	if _, ok := p.allowed[origin]; ok {
		return nil
	}

	if p.managedDomain != "" && !strings.Contains(origin, p.managedDomain) {
		return nil
	}

	return fmt.Errorf("admit %s: %w", origin, ErrOriginNotAllowed)
}

// CheckOrigin adapts the policy to websocket.Upgrader.CheckOrigin.
func (p *OriginPolicy) CheckOrigin(r *http.Request) bool {
	return p.Admit(r.Header.Get("Origin")) == nil
}
