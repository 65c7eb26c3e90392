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

// Package helper provides helper functions for testing.
package helper

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/client"
	"github.com/yorkie-team/coedit/server"
	"github.com/yorkie-team/coedit/server/backend"
	"github.com/yorkie-team/coedit/server/backend/housekeeping"
	"github.com/yorkie-team/coedit/server/profiling"
	"github.com/yorkie-team/coedit/server/rpc"
)

// Below are the values of the coedit config used in the test.
var (
	RPCPort = 11101

	ProfilingPort = 11102

	HousekeepingInterval = 100 * gotime.Millisecond
	PresenceTTL          = 30 * gotime.Second
	EditHistoryLimit     = 100
	SendQueueSize        = 256

	// AuthSecret is the join token secret used by tests that verify identities.
	AuthSecret = "coedit-test-secret"
)

var portOffset = 0

// TestConfig returns config for creating coedit instance.
func TestConfig() *server.Config {
	portOffset += 100
	return &server.Config{
		RPC: &rpc.Config{
			Port:            RPCPort + portOffset,
			Path:            server.DefaultRPCPath,
			MaxMessageBytes: server.DefaultRPCMaxMessageBytes,
			WriteTimeout:    server.DefaultRPCWriteTimeout.String(),
			PingInterval:    server.DefaultRPCPingInterval.String(),
			SendQueueSize:   SendQueueSize,
		},
		Profiling: &profiling.Config{
			Port: ProfilingPort + portOffset,
		},
		Housekeeping: &housekeeping.Config{
			Interval: HousekeepingInterval.String(),
		},
		Backend: &backend.Config{
			PresenceTTL:      PresenceTTL.String(),
			EditHistoryLimit: EditHistoryLimit,
		},
	}
}

// TestServer returns a new instance of coedit for testing.
func TestServer() *server.Coedit {
	c, err := server.New(TestConfig())
	if err != nil {
		log.Fatal(err)
	}
	return c
}

// StartTestServer creates and starts a server with the given config and
// shuts it down when the test finishes.
func StartTestServer(t testing.TB, conf *server.Config) *server.Coedit {
	svr, err := server.New(conf)
	require.NoError(t, err)
	require.NoError(t, svr.Start())
	require.NoError(t, WaitForServerToStart(svr.RPCAddr()))
	t.Cleanup(func() {
		require.NoError(t, svr.Shutdown(true))
	})

	return svr
}

// FreePort returns a TCP port that is free at the time of the call.
func FreePort(t testing.TB) int {
	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer func() { _ = lis.Close() }()

	return lis.Addr().(*net.TCPAddr).Port
}

// WaitForServerToStart waits for the server to start.
func WaitForServerToStart(addr string) error {
	maxRetries := 10
	initialDelay := 10 * gotime.Millisecond
	maxDelay := 1 * gotime.Second

	for attempt := range maxRetries {
		delay := initialDelay * gotime.Duration(1<<uint(attempt))
		delay = min(delay, maxDelay)

		conn, err := net.DialTimeout("tcp", addr, 1*gotime.Second)
		if err != nil {
			gotime.Sleep(delay)
			continue
		}

		if err := conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}

		return nil
	}

	return fmt.Errorf("timeout for server to start: %s", addr)
}

// TestDocumentID returns a document id unique to the running test.
func TestDocumentID(t testing.TB) types.DocumentID {
	name := strings.NewReplacer("/", "-", " ", "-").Replace(t.Name())
	return types.DocumentID(fmt.Sprintf("%s-%d", strings.ToLower(name), gotime.Now().UnixNano()))
}

// DialClient dials the server and closes the client when the test finishes.
func DialClient(t testing.TB, url string, opts ...client.Option) *client.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 5*gotime.Second)
	defer cancel()

	cli, err := client.Dial(ctx, url, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cli.Close()
	})

	return cli
}

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}
