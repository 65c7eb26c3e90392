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

// Package hub provides the single goroutine that owns every session and the
// presence registry. Connections and the sweeper talk to it only through
// commands, and each command runs to completion before the next one starts,
// so no half-written state is ever observable.
package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/backend/background"
	"github.com/yorkie-team/coedit/server/backend/room"
	"github.com/yorkie-team/coedit/server/logging"
	"github.com/yorkie-team/coedit/server/profiling/prometheus"
)

var (
	// ErrSessionNotFound is returned when a session id was never issued or
	// was already retired.
	ErrSessionNotFound = errors.NotFound("session not found").WithCode("ErrSessionNotFound")

	// ErrSessionExists is returned when a generated session id is already
	// registered.
	ErrSessionExists = errors.AlreadyExists("session already exists").WithCode("ErrSessionExists")

	// ErrHubClosed is returned when a command is submitted after shutdown.
	ErrHubClosed = errors.Unavailable("hub is closed").WithCode("ErrHubClosed")
)

const (
	// DefaultSendQueueSize is the default capacity of a session outbox.
	DefaultSendQueueSize = 256

	dropUnknownSession  = "unknown_session"
	dropUnknownPresence = "unknown_presence"
	dropQueueFull       = "queue_full"
	dropRejectedJoin    = "rejected_join"
)

// Verifier verifies the identity a joining session claims. It returns the
// user name the token carries, or an empty string to keep the claimed one.
type Verifier interface {
	Verify(token, userID string) (string, error)
}

// Session is one websocket connection registered to the hub.
type Session struct {
	id     types.SessionID
	outbox chan []byte
}

// ID returns the id of the session.
func (s *Session) ID() types.SessionID {
	return s.id
}

// Outbox returns the queue of encoded frames to write to the connection. It
// is closed when the session is retired.
func (s *Session) Outbox() <-chan []byte {
	return s.outbox
}

// Stats is a snapshot of the hub.
type Stats struct {
	Sessions  int
	Rooms     int
	Presences int
}

// SweepSummary summarizes a sweep.
type SweepSummary struct {
	Evicted      int
	RemovedRooms int
	Duration     time.Duration
}

// Hub owns the session table and the registry.
type Hub struct {
	registry  *room.Registry
	sessions  map[types.SessionID]*Session
	verifier  Verifier
	queueSize int

	commands chan func()
	stopped  chan struct{}

	logger  logging.Logger
	metrics *prometheus.Metrics
}

// New creates a hub. A nil verifier trusts the identity clients claim.
func New(
	registry *room.Registry,
	verifier Verifier,
	queueSize int,
	metrics *prometheus.Metrics,
) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultSendQueueSize
	}

	return &Hub{
		registry:  registry,
		sessions:  make(map[types.SessionID]*Session),
		verifier:  verifier,
		queueSize: queueSize,
		commands:  make(chan func()),
		stopped:   make(chan struct{}),
		logger:    logging.New("HUB"),
		metrics:   metrics,
	}
}

// Start runs the hub loop as a background routine. The loop stops when the
// background is closed.
func (h *Hub) Start(bg *background.Background) error {
	if !bg.AttachGoroutine(h.run, "hub") {
		return ErrHubClosed
	}
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case cmd := <-h.commands:
			cmd()
			h.updateGauges()
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// submit runs fn in the hub loop and waits for it to complete.
func (h *Hub) submit(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	cmd := func() {
		defer close(done)
		fn()
	}

	select {
	case h.commands <- cmd:
	case <-h.stopped:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-h.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrHubClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect registers a new session and allocates its outbox.
func (h *Hub) Connect(ctx context.Context) (*Session, error) {
	var session *Session
	var err error
	if subErr := h.submit(ctx, func() {
		id := types.SessionID(xid.New().String())
		if _, ok := h.sessions[id]; ok {
			err = fmt.Errorf("connect %s: %w", id, ErrSessionExists)
			return
		}

		session = &Session{id: id, outbox: make(chan []byte, h.queueSize)}
		h.sessions[id] = session
	}); subErr != nil {
		return nil, subErr
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Disconnect retires the session. Every room it joined loses its presence
// and announces user-left to the remaining members before Disconnect
// returns. The outbox of the session is closed.
func (h *Hub) Disconnect(ctx context.Context, id types.SessionID) error {
	var err error
	if subErr := h.submit(ctx, func() {
		session, ok := h.sessions[id]
		if !ok {
			err = fmt.Errorf("disconnect %s: %w", id, ErrSessionNotFound)
			return
		}

		deliveries := h.registry.LeaveAll(id)
		delete(h.sessions, id)
		close(session.outbox)
		h.deliver(deliveries)
	}); subErr != nil {
		return subErr
	}

	return err
}

// Dispatch processes an inbound event of the session. Events of unknown
// sessions or presences are dropped and reported with a NotFound error.
func (h *Hub) Dispatch(ctx context.Context, id types.SessionID, event events.Type, payload events.Payload) error {
	h.metrics.AddReceivedEvents(string(event))

	if join, ok := payload.(*events.JoinDocument); ok {
		return h.join(ctx, id, join)
	}

	var err error
	if subErr := h.submit(ctx, func() {
		if _, ok := h.sessions[id]; !ok {
			h.metrics.AddDroppedEvents(dropUnknownSession)
			err = fmt.Errorf("%s of %s: %w", event, id, ErrSessionNotFound)
			return
		}

		var deliveries []room.Delivery
		deliveries, err = h.apply(id, payload)
		if err != nil {
			if errors.Is(err, room.ErrPresenceNotFound) {
				h.metrics.AddDroppedEvents(dropUnknownPresence)
			}
			err = fmt.Errorf("%s of %s in %s: %w", event, id, payload.Document().RoomKey(), err)
			return
		}
		h.deliver(deliveries)
	}); subErr != nil {
		return subErr
	}

	return err
}

func (h *Hub) apply(id types.SessionID, payload events.Payload) ([]room.Delivery, error) {
	switch p := payload.(type) {
	case *events.CursorUpdate:
		return h.registry.UpdateCursor(p.DocumentID, id, p.SectionID, p.SubsectionID, p.CursorPosition)
	case *events.ContentUpdate:
		return h.registry.UpdateContent(p.DocumentID, id, p.SectionID, p.SubsectionID, p.Content)
	case *events.SectionFocus:
		return h.registry.UpdateFocus(p.DocumentID, id, p.SectionID, p.SubsectionID)
	case *events.CheckboxToggle:
		deliveries, err := h.registry.ToggleCheckbox(
			p.DocumentID, id, p.ItemID, *p.Checked, p.CheckedBy, p.CheckedAt,
		)
		if err == nil && logging.Enabled(zap.DebugLevel) {
			state := "unchecked"
			if *p.Checked {
				state = "checked"
			}
			h.logger.Debugf("Checkbox %s %s by %s in document %s", p.ItemID, state, p.CheckedBy.UserName, p.DocumentID)
		}
		return deliveries, err
	case *events.Heartbeat:
		if !h.registry.Heartbeat(p.DocumentID, id) {
			return nil, room.ErrPresenceNotFound
		}
		return nil, nil
	case *events.LeaveDocument:
		return h.registry.Leave(p.DocumentID, id), nil
	default:
		return nil, fmt.Errorf("apply %T: %w", payload, errors.Internal("unexpected payload"))
	}
}

func (h *Hub) join(ctx context.Context, id types.SessionID, p *events.JoinDocument) error {
	userName := p.UserName
	var verifyErr error
	if h.verifier != nil {
		name, err := h.verifier.Verify(p.Token, p.UserID)
		if err != nil {
			verifyErr = err
		} else if name != "" {
			userName = name
		}
	}

	var err error
	if subErr := h.submit(ctx, func() {
		if _, ok := h.sessions[id]; !ok {
			h.metrics.AddDroppedEvents(dropUnknownSession)
			err = fmt.Errorf("join of %s: %w", id, ErrSessionNotFound)
			return
		}

		if verifyErr != nil {
			h.metrics.AddDroppedEvents(dropRejectedJoin)
			err = fmt.Errorf("join %s as %s: %w", p.DocumentID.RoomKey(), p.UserID, verifyErr)
			h.deliver([]room.Delivery{{
				To: []types.SessionID{id},
				Event: events.Event{Type: events.JoinRejectedEvent, Data: &events.JoinRejected{
					DocumentID: p.DocumentID,
					Reason:     verifyErr.Error(),
				}},
			}})
			return
		}

		_, deliveries := h.registry.Join(p.DocumentID, id, p.UserID, userName)
		h.deliver(deliveries)
		h.logger.Infof("User %s joined document %s", userName, p.DocumentID)
	}); subErr != nil {
		return subErr
	}

	return err
}

// Sweep evicts inactive presences and removes empty rooms.
func (h *Hub) Sweep(ctx context.Context) (SweepSummary, error) {
	var summary SweepSummary
	err := h.submit(ctx, func() {
		start := time.Now()
		result := h.registry.Sweep()
		h.deliver(result.Deliveries)

		summary = SweepSummary{
			Evicted:      len(result.Evictions),
			RemovedRooms: len(result.RemovedRooms),
			Duration:     time.Since(start),
		}
		h.metrics.AddEvictions(summary.Evicted)
		h.metrics.ObserveSweepDurationSeconds(summary.Duration.Seconds())

		for _, eviction := range result.Evictions {
			h.logger.Infof(
				"User %s evicted from document %s after %s idle",
				eviction.Presence.UserName,
				eviction.Presence.DocumentID,
				eviction.Idle,
			)
		}

		rooms, presences := h.registry.Stats()
		h.logger.Debugf(
			"SWEEP: rooms[%d], sessions[%d], presences[%d], evicted[%d], removed[%d], %s",
			rooms,
			len(h.sessions),
			presences,
			summary.Evicted,
			summary.RemovedRooms,
			summary.Duration,
		)
	})

	return summary, err
}

// Rooms returns a summary of every room.
func (h *Hub) Rooms(ctx context.Context) ([]*types.RoomSummary, error) {
	var summaries []*types.RoomSummary
	if err := h.submit(ctx, func() {
		summaries = h.registry.Summaries()
	}); err != nil {
		return nil, err
	}

	return summaries, nil
}

// Presences returns the presences of the document in join order.
func (h *Hub) Presences(ctx context.Context, documentID types.DocumentID) ([]*types.Presence, error) {
	var presences []*types.Presence
	if err := h.submit(ctx, func() {
		presences = h.registry.Presences(documentID)
	}); err != nil {
		return nil, err
	}

	return presences, nil
}

// Stats returns a snapshot of the hub.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := h.submit(ctx, func() {
		stats.Rooms, stats.Presences = h.registry.Stats()
		stats.Sessions = len(h.sessions)
	})
	return stats, err
}

// deliver enqueues the deliveries without blocking. A full outbox drops the
// frame for that session only.
func (h *Hub) deliver(deliveries []room.Delivery) {
	for _, d := range deliveries {
		frame, err := d.Event.Encode()
		if err != nil {
			h.logger.Errorf("encode %s: %v", d.Event.Type, err)
			continue
		}

		sent := 0
		for _, to := range d.To {
			session, ok := h.sessions[to]
			if !ok {
				h.metrics.AddDroppedEvents(dropUnknownSession)
				continue
			}

			select {
			case session.outbox <- frame:
				sent++
			default:
				h.metrics.AddDroppedEvents(dropQueueFull)
				h.logger.Warnf("outbox of %s is full, dropping %s", to, d.Event.Type)
			}
		}
		h.metrics.AddSentEvents(string(d.Event.Type), sent)
	}
}

func (h *Hub) updateGauges() {
	rooms, presences := h.registry.Stats()
	h.metrics.SetHubStats(len(h.sessions), rooms, presences)
}

// closeAll retires every session without announcing user-left, since the
// whole registry goes away with the hub.
func (h *Hub) closeAll() {
	for id, session := range h.sessions {
		close(session.outbox)
		delete(h.sessions, id)
	}
	h.updateGauges()
	h.logger.Infof("hub stopped")
}
