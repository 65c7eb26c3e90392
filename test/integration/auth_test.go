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

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yorkie-team/coedit/admin"
	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/server/rpc/auth"
	"github.com/yorkie-team/coedit/test/helper"
)

func TestAuth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conf := helper.TestConfig()
	conf.Backend.AuthSecret = helper.AuthSecret
	svr := helper.StartTestServer(t, conf)

	tokens := auth.NewTokenManager(helper.AuthSecret, time.Hour)
	aliceToken, err := tokens.Generate("u1", "Alice Verified")
	require.NoError(t, err)

	t.Run("verified join test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, svr.CollabURL())

		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Mallory", aliceToken))
		var replay []*types.Presence
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, &replay)
		require.Len(t, replay, 1)
		assert.Equal(t, "Alice Verified", replay[0].UserName)
	})

	t.Run("rejected join test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, svr.CollabURL())
		mallory := helper.DialClient(t, svr.CollabURL())

		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Alice", aliceToken))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)

		forged := auth.NewTokenManager("another-secret", time.Hour)
		forgedToken, err := forged.Generate("u9", "Mallory")
		require.NoError(t, err)

		scenarios := []struct {
			userID string
			token  string
		}{
			{userID: "u9", token: ""},
			{userID: "u9", token: "garbage"},
			{userID: "u9", token: forgedToken},
			{userID: "u9", token: aliceToken},
		}
		for _, scenario := range scenarios {
			require.NoError(t, mallory.JoinDocument(ctx, doc, scenario.userID, "Mallory", scenario.token))
			var rejected events.JoinRejected
			nextEvent(ctx, t, mallory, events.JoinRejectedEvent, &rejected)
			assert.Equal(t, doc, rejected.DocumentID)
			assert.NotEmpty(t, rejected.Reason)
		}

		// Nobody else hears about rejected joins.
		assertNoEvent(t, alice)

		// A rejected session has no presence; its events are dropped.
		require.NoError(t, mallory.UpdateContent(ctx, doc, nil, nil, "spam"))
		assertNoEvent(t, alice)
	})

	t.Run("admin client needs an admin token test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, svr.CollabURL())
		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Alice", aliceToken))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)

		anonymous, err := admin.New(svr.RPCAddr(), admin.WithLogger(zap.NewNop()))
		require.NoError(t, err)
		defer anonymous.Close()
		_, err = anonymous.ListPresences(ctx, doc)
		assert.ErrorContains(t, err, "401")

		adminToken, err := tokens.GenerateAdmin("ops")
		require.NoError(t, err)
		cli, err := admin.New(svr.RPCAddr(), admin.WithToken(adminToken), admin.WithLogger(zap.NewNop()))
		require.NoError(t, err)
		defer cli.Close()

		presences, err := cli.ListPresences(ctx, doc)
		require.NoError(t, err)
		require.Len(t, presences, 1)
		assert.Equal(t, "Alice Verified", presences[0].UserName)
	})
}
