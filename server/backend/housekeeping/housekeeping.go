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

package housekeeping

import (
	"context"
	"time"

	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/backend/background"
	"github.com/yorkie-team/coedit/server/backend/hub"
	"github.com/yorkie-team/coedit/server/logging"
)

// Sweeper runs one sweep in the loop that owns the registry.
type Sweeper interface {
	Sweep(ctx context.Context) (hub.SweepSummary, error)
}

// Housekeeping periodically submits sweeps. It never touches the registry
// itself.
type Housekeeping struct {
	sweeper  Sweeper
	interval time.Duration

	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New creates a new housekeeping instance.
func New(conf *Config, sweeper Sweeper) (*Housekeeping, error) {
	interval, err := conf.ParseInterval()
	if err != nil {
		return nil, err
	}

	return &Housekeeping{
		sweeper:  sweeper,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start starts the sweep loop as a background routine.
func (h *Housekeeping) Start(bg *background.Background) error {
	if !bg.AttachGoroutine(h.run, "housekeeping") {
		return errors.Unavailable("background is closed")
	}
	h.started = true
	return nil
}

// Stop stops the sweep loop and waits for it to exit.
func (h *Housekeeping) Stop() error {
	if !h.started {
		return nil
	}

	select {
	case <-h.stop:
	default:
		close(h.stop)
	}

	<-h.done
	return nil
}

func (h *Housekeeping) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summary, err := h.sweeper.Sweep(ctx)
			if errors.Is(err, hub.ErrHubClosed) {
				return
			}
			if err != nil {
				logging.From(ctx).Error(err)
				continue
			}

			if summary.Evicted > 0 || summary.RemovedRooms > 0 {
				logging.From(ctx).Infof(
					"HSKP: evicted %d, removed rooms %d, %s",
					summary.Evicted,
					summary.RemovedRooms,
					summary.Duration,
				)
			}
		case <-h.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}
