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

// Package client provides a Go client of the coedit websocket protocol. It is
// used by the integration tests and by tools that join documents headlessly.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultEventBufferSize  = 256
)

var (
	// ErrClientClosed is returned when the connection of the client is closed.
	ErrClientClosed = errors.New("client is closed")
)

// HandshakeError is returned by Dial when the server refuses the websocket
// upgrade with an HTTP status.
type HandshakeError struct {
	StatusCode int
	Err        error
}

// Error returns the error message.
func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake refused with %d: %v", e.StatusCode, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Client is a websocket connection to a coedit server. Events pushed by the
// server are delivered through Events in arrival order.
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	events    chan events.Envelope
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the websocket endpoint at url, e.g.
// "ws://localhost:8080/collab".
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	options := Options{
		HandshakeTimeout: defaultHandshakeTimeout,
		EventBufferSize:  defaultEventBufferSize,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	header := http.Header{}
	for k, vs := range options.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if options.Origin != "" {
		header.Set("Origin", options.Origin)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: options.HandshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, &HandshakeError{StatusCode: resp.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger,
		events:  make(chan events.Envelope, options.EventBufferSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

// Events returns the events pushed by the server. The channel is closed when
// the connection ends.
func (c *Client) Events() <-chan events.Envelope {
	return c.events
}

// Next waits for the next event pushed by the server.
func (c *Client) Next(ctx context.Context) (events.Envelope, error) {
	select {
	case env, ok := <-c.events:
		if !ok {
			return events.Envelope{}, ErrClientClosed
		}
		return env, nil
	case <-ctx.Done():
		return events.Envelope{}, ctx.Err()
	}
}

// Done returns a channel closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// JoinDocument joins the document. The token is only required when the
// server verifies identities.
func (c *Client) JoinDocument(
	ctx context.Context,
	documentID types.DocumentID,
	userID, userName, token string,
) error {
	return c.send(ctx, events.JoinDocumentEvent, &events.JoinDocument{
		DocumentID: documentID,
		UserID:     userID,
		UserName:   userName,
		Token:      token,
	})
}

// UpdateCursor moves the cursor of this client. Nil fields are omitted.
func (c *Client) UpdateCursor(
	ctx context.Context,
	documentID types.DocumentID,
	sectionID, subsectionID *string,
	cursorPosition *int,
) error {
	return c.send(ctx, events.CursorUpdateEvent, &events.CursorUpdate{
		DocumentID:     documentID,
		SectionID:      sectionID,
		SubsectionID:   subsectionID,
		CursorPosition: cursorPosition,
	})
}

// UpdateContent sends an edit. The content is marshaled as JSON and relayed
// to the other members untouched.
func (c *Client) UpdateContent(
	ctx context.Context,
	documentID types.DocumentID,
	sectionID, subsectionID *string,
	content any,
) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	return c.send(ctx, events.ContentUpdateEvent, &events.ContentUpdate{
		DocumentID:   documentID,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
		Content:      raw,
	})
}

// FocusSection moves the focus of this client.
func (c *Client) FocusSection(
	ctx context.Context,
	documentID types.DocumentID,
	sectionID, subsectionID *string,
) error {
	return c.send(ctx, events.SectionFocusEvent, &events.SectionFocus{
		DocumentID:   documentID,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
	})
}

// ToggleCheckbox toggles a checklist item.
func (c *Client) ToggleCheckbox(
	ctx context.Context,
	documentID types.DocumentID,
	itemID string,
	checked bool,
	checkedBy *types.CheckedBy,
	checkedAt string,
) error {
	return c.send(ctx, events.CheckboxToggleEvent, &events.CheckboxToggle{
		DocumentID: documentID,
		ItemID:     itemID,
		Checked:    &checked,
		CheckedBy:  checkedBy,
		CheckedAt:  checkedAt,
	})
}

// Heartbeat refreshes the liveness of the presence of this client.
func (c *Client) Heartbeat(ctx context.Context, documentID types.DocumentID) error {
	return c.send(ctx, events.HeartbeatEvent, &events.Heartbeat{DocumentID: documentID})
}

// LeaveDocument leaves the document.
func (c *Client) LeaveDocument(ctx context.Context, documentID types.DocumentID) error {
	return c.send(ctx, events.LeaveDocumentEvent, &events.LeaveDocument{DocumentID: documentID})
}

// SendRaw writes the frame as is.
func (c *Client) SendRaw(ctx context.Context, frame []byte) error {
	return c.write(ctx, frame)
}

// Close closes the connection and waits for the read loop to stop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)

		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		c.writeMu.Unlock()

		err = c.conn.Close()
		<-c.done
	})

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, typ events.Type, payload any) error {
	frame, err := events.Event{Type: typ, Data: payload}.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}

	return c.write(ctx, frame)
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		close(c.events)
		close(c.done)
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closing:
			default:
				c.logger.Debug("read", zap.Error(err))
			}
			return
		}

		var env events.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.logger.Warn("malformed frame", zap.Error(err))
			continue
		}

		select {
		case c.events <- env:
		case <-c.closing:
			return
		}
	}
}
