/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

// Package admin provides a client of the read-only admin endpoints of a
// coedit server.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/yorkie-team/coedit/api/types"
)

// Option configures Options.
type Option func(*Options)

// WithTimeout configures the timeout of each request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.Timeout = timeout }
}

// WithToken configures the admin token sent as a bearer token.
func WithToken(token string) Option {
	return func(o *Options) { o.Token = token }
}

// WithLogger configures the Logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Options configures how we set up the client.
type Options struct {
	// Timeout is the timeout of each request.
	Timeout time.Duration

	// Token is the admin token of the client. It is required when the
	// server verifies identities.
	Token string

	// Logger is the Logger of the client.
	Logger *zap.Logger
}

// Client is a client for the admin endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	logger *zap.Logger
}

// New creates an instance of Client for the server at rpcAddr, e.g.
// "localhost:8080".
func New(rpcAddr string, opts ...Option) (*Client, error) {
	options := Options{Timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("new logger: %w", err)
		}
		logger = l
	}

	return &Client{
		baseURL:    "http://" + rpcAddr,
		httpClient: &http.Client{Timeout: options.Timeout},
		token:      options.Token,
		logger:     logger,
	}, nil
}

// Close releases idle connections of the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// ListRooms lists the summaries of every room.
func (c *Client) ListRooms(ctx context.Context) ([]*types.RoomSummary, error) {
	var rooms []*types.RoomSummary
	if err := c.get(ctx, "/rooms", &rooms); err != nil {
		return nil, err
	}

	return rooms, nil
}

// ListPresences lists the presences of a document in join order.
func (c *Client) ListPresences(ctx context.Context, documentID types.DocumentID) ([]*types.Presence, error) {
	var presences []*types.Presence
	path := "/rooms/" + url.PathEscape(documentID.String()) + "/presences"
	if err := c.get(ctx, path, &presences); err != nil {
		return nil, err
	}

	return presences, nil
}

// GetServerVersion gets the version of the server.
func (c *Client) GetServerVersion(ctx context.Context) (*types.VersionDetail, error) {
	var detail types.VersionDetail
	if err := c.get(ctx, "/version", &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request %s: %w", path, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("close body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("get %s: %s: %s", path, resp.Status, body.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}
