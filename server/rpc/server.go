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

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/yorkie-team/coedit/server/backend"
	"github.com/yorkie-team/coedit/server/logging"
	"github.com/yorkie-team/coedit/server/rpc/httphealth"
)

// Server is a normal server that processes the logic requested by the client.
type Server struct {
	conf          *Config
	httpServer    *http.Server
	serviceCancel context.CancelFunc
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend) (*Server, error) {
	serviceCtx, serviceCancel := context.WithCancel(context.Background())

	admin := newAdminServer(be.Hub)
	collab := newCollabHandler(serviceCtx, conf, be.Hub, be.Config.ParsePresenceTTL())

	r := mux.NewRouter()
	r.Use(newAccessLogMiddleware(logging.New("HTTP")))
	r.Handle(conf.Path, collab).Methods(http.MethodGet)

	rooms := r.PathPrefix("/rooms").Subrouter()
	rooms.Use(newAdminAuthMiddleware(be.TokenManager))
	rooms.HandleFunc("", admin.listRooms).Methods(http.MethodGet)
	rooms.HandleFunc("/{documentID}/presences", admin.listPresences).Methods(http.MethodGet)

	r.HandleFunc("/version", admin.getServerVersion).Methods(http.MethodGet)
	healthPath, healthHandler := httphealth.NewHandler(httphealth.CheckerFunc(func(ctx context.Context) error {
		_, err := be.Hub.Stats(ctx)
		return err
	}))
	r.Handle(healthPath, healthHandler)

	return &Server{
		conf: conf,
		httpServer: &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		serviceCancel: serviceCancel,
	}, nil
}

// Start starts this server by opening the rpc port.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.conf.Port))
	if err != nil {
		logging.DefaultLogger().Error(err)
		return err
	}

	go func() {
		logging.DefaultLogger().Infof("serving RPC on %d", s.conf.Port)

		if err := s.httpServer.Serve(lis); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logging.DefaultLogger().Error(err)
			}
		}
	}()

	return nil
}

// Shutdown shuts down this server. Upgraded connections are not tracked by
// the HTTP server; they end when the hub closes their outboxes.
func (s *Server) Shutdown(graceful bool) {
	s.serviceCancel()

	if graceful {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.DefaultLogger().Errorf("HTTP server Shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Errorf("HTTP server Close: %v", err)
	}
}

// newAccessLogMiddleware logs every request with its status and duration.
// For websockets the duration is the lifetime of the connection.
func newAccessLogMiddleware(logger logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Debugf("%s %s => %d, %s", r.Method, r.URL.Path, m.Code, m.Duration)
		})
	}
}
