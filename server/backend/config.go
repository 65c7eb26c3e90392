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

package backend

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidEditHistoryLimit occurs when the edit history limit is not positive.
	ErrInvalidEditHistoryLimit = errors.New("invalid edit history limit")
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// PresenceTTL is the inactivity after which a presence is evicted by the
	// sweeper. Default is "30s".
	PresenceTTL string `yaml:"PresenceTTL"`

	// EditHistoryLimit is the number of edits retained per document.
	// Default is 100.
	EditHistoryLimit int `yaml:"EditHistoryLimit"`

	// AuthSecret is the HMAC secret of join tokens. When empty, the identity
	// claimed at join time is trusted.
	AuthSecret string `yaml:"AuthSecret"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	ttl, err := time.ParseDuration(c.PresenceTTL)
	if err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--presence-ttl" flag: %w`,
			c.PresenceTTL,
			err,
		)
	}
	if ttl <= 0 {
		return fmt.Errorf(`invalid argument "%s" for "--presence-ttl" flag: must be positive`, c.PresenceTTL)
	}

	if c.EditHistoryLimit <= 0 {
		return fmt.Errorf(
			`invalid argument "%d" for "--edit-history-limit" flag: %w`,
			c.EditHistoryLimit,
			ErrInvalidEditHistoryLimit,
		)
	}

	return nil
}

// ParsePresenceTTL returns the presence ttl. It must be called after Validate.
func (c *Config) ParsePresenceTTL() time.Duration {
	result, err := time.ParseDuration(c.PresenceTTL)
	if err != nil {
		return 0
	}

	return result
}
