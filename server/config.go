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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/coedit/server/backend"
	"github.com/yorkie-team/coedit/server/backend/housekeeping"
	"github.com/yorkie-team/coedit/server/profiling"
	"github.com/yorkie-team/coedit/server/rpc"
)

// Below are the values of the default values of coedit config.
const (
	DefaultRPCPort            = 8080
	DefaultRPCPath            = "/collab"
	DefaultRPCMaxMessageBytes = 64 * 1024
	DefaultRPCWriteTimeout    = 10 * time.Second
	DefaultRPCPingInterval    = 25 * time.Second
	DefaultRPCSendQueueSize   = 256

	DefaultProfilingPort = 8081

	DefaultHousekeepingInterval = 10 * time.Second

	DefaultPresenceTTL      = 30 * time.Second
	DefaultEditHistoryLimit = 100
)

// Config is the configuration for creating a coedit instance.
type Config struct {
	RPC          *rpc.Config          `yaml:"RPC"`
	Profiling    *profiling.Config    `yaml:"Profiling"`
	Housekeeping *housekeeping.Config `yaml:"Housekeeping"`
	Backend      *backend.Config      `yaml:"Backend"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRPCPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RPCAddr returns the RPC address.
func (c *Config) RPCAddr() string {
	return fmt.Sprintf("localhost:%d", c.RPC.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.Profiling.Validate(); err != nil {
		return err
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.RPC == nil {
		c.RPC = &rpc.Config{}
	}
	if c.Profiling == nil {
		c.Profiling = &profiling.Config{}
	}
	if c.Housekeeping == nil {
		c.Housekeeping = &housekeeping.Config{}
	}
	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}

	if c.RPC.Port == 0 {
		c.RPC.Port = DefaultRPCPort
	}
	if c.RPC.Path == "" {
		c.RPC.Path = DefaultRPCPath
	}
	if c.RPC.MaxMessageBytes == 0 {
		c.RPC.MaxMessageBytes = DefaultRPCMaxMessageBytes
	}
	if c.RPC.WriteTimeout == "" {
		c.RPC.WriteTimeout = DefaultRPCWriteTimeout.String()
	}
	if c.RPC.PingInterval == "" {
		c.RPC.PingInterval = DefaultRPCPingInterval.String()
	}
	if c.RPC.SendQueueSize == 0 {
		c.RPC.SendQueueSize = DefaultRPCSendQueueSize
	}

	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}

	if c.Backend.PresenceTTL == "" {
		c.Backend.PresenceTTL = DefaultPresenceTTL.String()
	}
	if c.Backend.EditHistoryLimit == 0 {
		c.Backend.EditHistoryLimit = DefaultEditHistoryLimit
	}
}

func newConfig(port int, profilingPort int) *Config {
	return &Config{
		RPC: &rpc.Config{
			Port:            port,
			Path:            DefaultRPCPath,
			MaxMessageBytes: DefaultRPCMaxMessageBytes,
			WriteTimeout:    DefaultRPCWriteTimeout.String(),
			PingInterval:    DefaultRPCPingInterval.String(),
			SendQueueSize:   DefaultRPCSendQueueSize,
		},
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Interval: DefaultHousekeepingInterval.String(),
		},
		Backend: &backend.Config{
			PresenceTTL:      DefaultPresenceTTL.String(),
			EditHistoryLimit: DefaultEditHistoryLimit,
		},
	}
}
