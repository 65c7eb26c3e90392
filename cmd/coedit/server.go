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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yorkie-team/coedit/server"
	"github.com/yorkie-team/coedit/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath string
	flagLogLevel string

	rpcWriteTimeout      time.Duration
	rpcPingInterval      time.Duration
	housekeepingInterval time.Duration
	presenceTTL          time.Duration

	conf = server.NewConfig()
)

// Flags whose values may also come from COEDIT_ environment variables, e.g.
// COEDIT_PRODUCTION=true or COEDIT_ALLOWED_ORIGINS=https://a,https://b.
var envFlags = []string{
	"production",
	"allowed-origins",
	"managed-domain",
	"auth-secret",
}

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start coedit server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindEnvFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.RPC.WriteTimeout = rpcWriteTimeout.String()
			conf.RPC.PingInterval = rpcPingInterval.String()
			conf.Housekeeping.Interval = housekeepingInterval.String()
			conf.Backend.PresenceTTL = presenceTTL.String()

			conf.RPC.Production = viper.GetBool("production")
			conf.RPC.AllowedOrigins = splitList(viper.GetString("allowed-origins"))
			conf.RPC.ManagedDomain = viper.GetString("managed-domain")
			conf.Backend.AuthSecret = viper.GetString("auth-secret")

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			c, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := c.Start(); err != nil {
				return err
			}

			if code := handleSignal(c); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

// bindEnvFlags lets COEDIT_ environment variables fill the host-environment
// flags that were not given on the command line.
func bindEnvFlags(flags *pflag.FlagSet) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, name := range envFlags {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}

	return nil
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func handleSignal(c *server.Coedit) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-c.ShutdownCh():
		// coedit is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := c.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().StringVar(
		&conf.RPC.Path,
		"rpc-path",
		server.DefaultRPCPath,
		"Path of the websocket endpoint",
	)
	cmd.Flags().Int64Var(
		&conf.RPC.MaxMessageBytes,
		"rpc-max-message-bytes",
		server.DefaultRPCMaxMessageBytes,
		"Maximum inbound frame size in bytes the server will accept.",
	)
	cmd.Flags().DurationVar(
		&rpcWriteTimeout,
		"rpc-write-timeout",
		server.DefaultRPCWriteTimeout,
		"Deadline of a single frame write.",
	)
	cmd.Flags().DurationVar(
		&rpcPingInterval,
		"rpc-ping-interval",
		server.DefaultRPCPingInterval,
		"Interval of websocket pings.",
	)
	cmd.Flags().IntVar(
		&conf.RPC.SendQueueSize,
		"rpc-send-queue-size",
		server.DefaultRPCSendQueueSize,
		"Capacity of the outbound queue of each session. Frames beyond it are dropped.",
	)
	cmd.Flags().Bool(
		"production",
		false,
		"Refuse websocket origins outside the allowed list. (env: COEDIT_PRODUCTION)",
	)
	cmd.Flags().String(
		"allowed-origins",
		"",
		"Comma separated origins admitted in production. (env: COEDIT_ALLOWED_ORIGINS)",
	)
	cmd.Flags().String(
		"managed-domain",
		"",
		"Domain of the hosted application; other origins are custom domains. (env: COEDIT_MANAGED_DOMAIN)",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between sweeps of inactive presences",
	)
	cmd.Flags().DurationVar(
		&presenceTTL,
		"presence-ttl",
		server.DefaultPresenceTTL,
		"Inactivity after which a presence is evicted.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.EditHistoryLimit,
		"edit-history-limit",
		server.DefaultEditHistoryLimit,
		"Number of edits retained per document.",
	)
	cmd.Flags().String(
		"auth-secret",
		"",
		"HMAC secret of join tokens. When empty, claimed identities are trusted. (env: COEDIT_AUTH_SECRET)",
	)

	rootCmd.AddCommand(cmd)
}
