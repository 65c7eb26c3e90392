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

package rpc

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/internal/version"
	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/server/backend/hub"
	"github.com/yorkie-team/coedit/server/logging"
	"github.com/yorkie-team/coedit/server/rpc/auth"
)

// bearerPrefix is the scheme prefix of the Authorization header.
const bearerPrefix = "Bearer "

// ErrorResponse is the body of a failed admin request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// adminServer serves the read-only admin endpoints.
type adminServer struct {
	hub *hub.Hub
}

func newAdminServer(h *hub.Hub) *adminServer {
	return &adminServer{hub: h}
}

// listRooms lists the summaries of every room.
func (s *adminServer) listRooms(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.hub.Rooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []*types.RoomSummary{}
	}

	writeJSON(w, http.StatusOK, summaries)
}

// listPresences lists the presences of a document in join order.
func (s *adminServer) listPresences(w http.ResponseWriter, r *http.Request) {
	documentID := types.DocumentID(mux.Vars(r)["documentID"])

	presences, err := s.hub.Presences(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if presences == nil {
		presences = []*types.Presence{}
	}

	writeJSON(w, http.StatusOK, presences)
}

// newAdminAuthMiddleware requires a bearer token with the admin role. With no
// token manager, join identities are trusted and so are admin requests.
func newAdminAuthMiddleware(tokenManager *auth.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if tokenManager == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authorization, bearerPrefix)
			if !ok {
				token = ""
			}

			subject, err := tokenManager.VerifyAdmin(strings.TrimSpace(token))
			if err != nil {
				if errors.IsStatus(err, errors.ErrCodeUnauthenticated) {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				logging.DefaultLogger().Warnf("HTTP: %s %s refused: %v", r.Method, r.URL.Path, err)
				writeError(w, err)
				return
			}

			logging.DefaultLogger().Debugf("HTTP: %s %s by %s", r.Method, r.URL.Path, subject)
			next.ServeHTTP(w, r)
		})
	}
}

// getServerVersion reports the version of the running server.
func (s *adminServer) getServerVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.Detail())
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.DefaultLogger().Warnf("HTTP: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.StatusOf(err).HTTPStatus(), ErrorResponse{
		Error: err.Error(),
		Code:  errors.CodeOf(err),
	})
}
