/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

// Package backend wires the hub, the registry and the sweeper of coedit and
// manages their lifecycle.
package backend

import (
	"errors"
	"fmt"
	"time"

	"github.com/yorkie-team/coedit/server/backend/background"
	"github.com/yorkie-team/coedit/server/backend/housekeeping"
	"github.com/yorkie-team/coedit/server/backend/hub"
	"github.com/yorkie-team/coedit/server/backend/room"
	"github.com/yorkie-team/coedit/server/logging"
	"github.com/yorkie-team/coedit/server/profiling/prometheus"
	"github.com/yorkie-team/coedit/server/rpc/auth"
)

// Backend manages the in-memory state of coedit: the hub that owns sessions
// and rooms, and the sweeper that evicts inactive presences.
type Backend struct {
	Config *Config

	// Hub owns every session and the presence registry.
	Hub *hub.Hub
	// TokenManager verifies join tokens. It is nil when AuthSecret is empty.
	TokenManager *auth.TokenManager

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping submits periodic sweeps to the hub.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	housekeepingConf *housekeeping.Config,
	sendQueueSize int,
	metrics *prometheus.Metrics,
	now func() time.Time,
) (*Backend, error) {
	// 01. Create the token manager if join tokens must be verified.
	var tokenManager *auth.TokenManager
	var verifier hub.Verifier
	if conf.AuthSecret != "" {
		tokenManager = auth.NewTokenManager(conf.AuthSecret, auth.DefaultTokenDuration)
		verifier = tokenManager
	} else {
		logging.DefaultLogger().Warn(
			"AuthSecret is empty: the identity claimed by join-document is trusted",
		)
	}

	// 02. Create the registry and the hub that owns it.
	registry := room.NewRegistry(conf.ParsePresenceTTL(), conf.EditHistoryLimit, now)
	h := hub.New(registry, verifier, sendQueueSize, metrics)

	// 03. Create the sweeper.
	keeping, err := housekeeping.New(housekeepingConf, h)
	if err != nil {
		return nil, fmt.Errorf("new housekeeping: %w", err)
	}

	return &Backend{
		Config:       conf,
		Hub:          h,
		TokenManager: tokenManager,
		Background:   background.New(metrics),
		Housekeeping: keeping,
		Metrics:      metrics,
	}, nil
}

// Start starts the hub loop and the sweeper.
func (b *Backend) Start() error {
	if err := b.Hub.Start(b.Background); err != nil {
		return err
	}

	if err := b.Housekeeping.Start(b.Background); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown stops the sweeper and the hub. Every open session is retired and
// its outbox closed.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	b.Background.Close()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
