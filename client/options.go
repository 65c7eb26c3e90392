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

package client

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Option configures Options.
type Option func(*Options)

// Options configures how we set up the client.
type Options struct {
	// Origin is sent as the Origin header of the websocket handshake.
	Origin string

	// Header is merged into the headers of the websocket handshake.
	Header http.Header

	// HandshakeTimeout bounds the websocket handshake.
	HandshakeTimeout time.Duration

	// EventBufferSize is the capacity of the channel returned by Events.
	EventBufferSize int

	// Logger is the Logger of the client.
	Logger *zap.Logger
}

// WithOrigin configures the origin of the client.
func WithOrigin(origin string) Option {
	return func(o *Options) { o.Origin = origin }
}

// WithHeader configures extra headers of the handshake.
func WithHeader(header http.Header) Option {
	return func(o *Options) { o.Header = header }
}

// WithHandshakeTimeout configures the handshake timeout of the client.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.HandshakeTimeout = timeout }
}

// WithEventBufferSize configures the capacity of the event channel.
func WithEventBufferSize(size int) Option {
	return func(o *Options) { o.EventBufferSize = size }
}

// WithLogger configures the Logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}
