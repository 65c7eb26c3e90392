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

package housekeeping_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/server/backend/background"
	"github.com/yorkie-team/coedit/server/backend/housekeeping"
	"github.com/yorkie-team/coedit/server/backend/hub"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep(ctx context.Context) (hub.SweepSummary, error) {
	s.calls.Add(1)
	return hub.SweepSummary{Evicted: 1}, nil
}

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		validConf := housekeeping.Config{Interval: "10s"}
		assert.NoError(t, validConf.Validate())

		conf1 := validConf
		conf1.Interval = "hour"
		assert.Error(t, conf1.Validate())

		conf2 := validConf
		conf2.Interval = "0s"
		assert.Error(t, conf2.Validate())

		interval, err := validConf.ParseInterval()
		assert.NoError(t, err)
		assert.Equal(t, 10*time.Second, interval)
	})
}

func TestHousekeeping(t *testing.T) {
	t.Run("sweeps periodically test", func(t *testing.T) {
		sweeper := &countingSweeper{}
		h, err := housekeeping.New(&housekeeping.Config{Interval: "10ms"}, sweeper)
		require.NoError(t, err)

		bg := background.New(nil)
		defer bg.Close()
		require.NoError(t, h.Start(bg))

		assert.Eventually(t, func() bool {
			return sweeper.calls.Load() >= 3
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, h.Stop())
		require.NoError(t, h.Stop())
		calls := sweeper.calls.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, calls, sweeper.calls.Load())
	})

	t.Run("stops with the background test", func(t *testing.T) {
		h, err := housekeeping.New(&housekeeping.Config{Interval: "1h"}, &countingSweeper{})
		require.NoError(t, err)

		bg := background.New(nil)
		require.NoError(t, h.Start(bg))
		bg.Close()
		require.NoError(t, h.Stop())
	})

	t.Run("invalid interval test", func(t *testing.T) {
		_, err := housekeeping.New(&housekeeping.Config{Interval: "soon"}, &countingSweeper{})
		assert.Error(t, err)
	})
}
