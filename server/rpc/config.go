/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidRPCPort occurs when the port in the config is invalid.
	ErrInvalidRPCPort = errors.New("invalid port number for RPC server")
	// ErrInvalidPath occurs when the websocket path is not absolute.
	ErrInvalidPath = errors.New("invalid websocket path for RPC server")
	// ErrInvalidMaxMessageBytes occurs when the message size limit is not positive.
	ErrInvalidMaxMessageBytes = errors.New("invalid max message bytes for RPC server")
	// ErrInvalidWriteTimeout occurs when the write timeout is invalid.
	ErrInvalidWriteTimeout = errors.New("invalid write timeout for RPC server")
	// ErrInvalidPingInterval occurs when the ping interval is invalid.
	ErrInvalidPingInterval = errors.New("invalid ping interval for RPC server")
	// ErrInvalidSendQueueSize occurs when the send queue size is not positive.
	ErrInvalidSendQueueSize = errors.New("invalid send queue size for RPC server")
)

// Config is the configuration for creating a Server instance.
type Config struct {
	// Port is the port number for the RPC server.
	Port int `yaml:"Port"`

	// Path is the path the websocket endpoint is mounted on.
	Path string `yaml:"Path"`

	// Production enables the origin policy. Outside production every origin
	// is admitted.
	Production bool `yaml:"Production"`

	// AllowedOrigins is the list of origins admitted in production.
	AllowedOrigins []string `yaml:"AllowedOrigins"`

	// ManagedDomain is the domain of the hosted application. In production,
	// origins that do not contain it are customer custom domains and are
	// admitted.
	ManagedDomain string `yaml:"ManagedDomain"`

	// MaxMessageBytes is the maximum size of an inbound frame.
	MaxMessageBytes int64 `yaml:"MaxMessageBytes"`

	// WriteTimeout is the deadline of a single frame write.
	WriteTimeout string `yaml:"WriteTimeout"`

	// PingInterval is the interval of websocket pings.
	PingInterval string `yaml:"PingInterval"`

	// SendQueueSize is the capacity of the outbound queue of each session.
	SendQueueSize int `yaml:"SendQueueSize"`
}

// Validate validates the port number and the connection settings.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidRPCPort)
	}

	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("%q: %w", c.Path, ErrInvalidPath)
	}

	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("%d: %w", c.MaxMessageBytes, ErrInvalidMaxMessageBytes)
	}

	if d, err := time.ParseDuration(c.WriteTimeout); err != nil || d <= 0 {
		return fmt.Errorf("%s: %w", c.WriteTimeout, ErrInvalidWriteTimeout)
	}

	if d, err := time.ParseDuration(c.PingInterval); err != nil || d <= 0 {
		return fmt.Errorf("%s: %w", c.PingInterval, ErrInvalidPingInterval)
	}

	if c.SendQueueSize <= 0 {
		return fmt.Errorf("%d: %w", c.SendQueueSize, ErrInvalidSendQueueSize)
	}

	return nil
}

// ParseWriteTimeout returns the write timeout. It must be called after
// Validate.
func (c *Config) ParseWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// ParsePingInterval returns the ping interval. It must be called after
// Validate.
func (c *Config) ParsePingInterval() time.Duration {
	d, _ := time.ParseDuration(c.PingInterval)
	return d
}
