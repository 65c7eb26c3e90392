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

// Package server provides the coedit server which is the main entry point of
// the coedit system. The server is responsible for starting the websocket
// server, the profiling server and the hub behind them.
package server

import (
	"context"
	gosync "sync"
	"time"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/server/backend"
	"github.com/yorkie-team/coedit/server/profiling"
	"github.com/yorkie-team/coedit/server/profiling/prometheus"
	"github.com/yorkie-team/coedit/server/rpc"
)

// Coedit is a server of coedit.
// The server accepts websocket connections, tracks who is present in each
// document and relays their cursors, focus and edits to the other members.
type Coedit struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	rpcServer       *rpc.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Coedit.
func New(conf *Config) (*Coedit, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Housekeeping,
		conf.RPC.SendQueueSize,
		metrics,
		time.Now,
	)
	if err != nil {
		return nil, err
	}

	rpcServer, err := rpc.NewServer(conf.RPC, be)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Coedit{
		conf:            conf,
		backend:         be,
		rpcServer:       rpcServer,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the rpc port.
func (c *Coedit) Start() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.backend.Start(); err != nil {
		return err
	}

	if c.profilingServer != nil {
		if err := c.profilingServer.Start(); err != nil {
			return err
		}
	}

	return c.rpcServer.Start()
}

// Shutdown shuts down this coedit server. New connections are refused first,
// then the hub stops and closes every open session.
func (c *Coedit) Shutdown(graceful bool) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.shutdown {
		return nil
	}

	c.rpcServer.Shutdown(graceful)
	if c.profilingServer != nil {
		c.profilingServer.Shutdown(graceful)
	}

	if err := c.backend.Shutdown(); err != nil {
		return err
	}

	close(c.shutdownCh)
	c.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (c *Coedit) ShutdownCh() <-chan struct{} {
	return c.shutdownCh
}

// RPCAddr returns the address of the RPC.
func (c *Coedit) RPCAddr() string {
	return c.conf.RPCAddr()
}

// CollabURL returns the websocket URL of the server.
func (c *Coedit) CollabURL() string {
	return "ws://" + c.conf.RPCAddr() + c.conf.RPC.Path
}

// Rooms returns the summaries of every room. It is used for testing.
func (c *Coedit) Rooms(ctx context.Context) ([]*types.RoomSummary, error) {
	return c.backend.Hub.Rooms(ctx)
}
