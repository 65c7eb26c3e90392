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

package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/backend/hub"
	"github.com/yorkie-team/coedit/server/logging"
)

// collabHandler upgrades requests to websockets and pumps frames between the
// connection and its hub session.
type collabHandler struct {
	ctx      context.Context
	hub      *hub.Hub
	policy   *OriginPolicy
	upgrader websocket.Upgrader

	maxMessageBytes int64
	writeTimeout    time.Duration
	pingInterval    time.Duration
	readTimeout     time.Duration
}

func newCollabHandler(
	ctx context.Context,
	conf *Config,
	h *hub.Hub,
	presenceTTL time.Duration,
) *collabHandler {
	policy := NewOriginPolicy(conf)
	pingInterval := conf.ParsePingInterval()

	return &collabHandler{
		ctx:    ctx,
		hub:    h,
		policy: policy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     policy.CheckOrigin,
		},
		maxMessageBytes: conf.MaxMessageBytes,
		writeTimeout:    conf.ParseWriteTimeout(),
		pingInterval:    pingInterval,
		// A peer that answers neither pings nor sends anything for a whole
		// presence ttl is gone.
		readTimeout: presenceTTL + pingInterval,
	}
}

// ServeHTTP serves one websocket connection until it closes.
func (c *collabHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if err := c.policy.Admit(origin); err != nil {
		logging.DefaultLogger().Warnf("WS: refused %s: %v", r.RemoteAddr, err)
		http.Error(w, err.Error(), errors.StatusOf(err).HTTPStatus())
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logging.DefaultLogger().Debugf("WS: upgrade %s: %v", r.RemoteAddr, err)
		return
	}

	session, err := c.hub.Connect(c.ctx)
	if err != nil {
		logging.DefaultLogger().Warnf("WS: connect %s: %v", r.RemoteAddr, err)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable"),
			time.Now().Add(c.writeTimeout),
		)
		_ = conn.Close()
		return
	}

	logger := logging.New("WS", logging.NewField("session", session.ID().String()))
	logger.Debugf("connected from %s, origin %q", r.RemoteAddr, origin)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump(conn, session, logger)
	}()

	c.readPump(conn, session, logger)

	// Disconnect closes the outbox, which ends the write pump.
	if err := c.hub.Disconnect(context.Background(), session.ID()); err != nil &&
		!errors.Is(err, hub.ErrHubClosed) {
		logger.Warnf("disconnect: %v", err)
	}
	<-done

	logger.Debugf("disconnected")
}

// readPump reads frames until the connection fails or the hub closes.
func (c *collabHandler) readPump(conn *websocket.Conn, session *hub.Session, logger logging.Logger) {
	conn.SetReadLimit(c.maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	for {
		kind, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("read: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))

		if kind != websocket.TextMessage {
			logging.LogEventError(logger, "binary", fmt.Errorf("frame of kind %d: %w", kind, events.ErrMalformedFrame))
			continue
		}

		event, payload, err := events.Decode(frame)
		if err != nil {
			logging.LogEventError(logger, string(event), err)
			continue
		}

		if err := c.hub.Dispatch(c.ctx, session.ID(), event, payload); err != nil {
			if errors.Is(err, hub.ErrHubClosed) || c.ctx.Err() != nil {
				return
			}
			logging.LogEventError(logger, string(event), err)
		}
	}
}

// writePump writes queued frames and pings until the outbox closes or a
// write fails.
func (c *collabHandler) writePump(conn *websocket.Conn, session *hub.Session, logger logging.Logger) {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-session.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				_ = conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debugf("write: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debugf("ping: %v", err)
				return
			}
		}
	}
}
