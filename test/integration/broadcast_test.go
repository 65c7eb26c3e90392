/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
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
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/client"
	"github.com/yorkie-team/coedit/test/helper"
)

func TestBroadcast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	t.Run("focus and checkbox test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, defaultServer.CollabURL())
		bob := helper.DialClient(t, defaultServer.CollabURL())

		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Alice", ""))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)
		require.NoError(t, bob.JoinDocument(ctx, doc, "u2", "Bob", ""))
		nextEvent(ctx, t, bob, events.PresencesUpdateEvent, nil)
		nextEvent(ctx, t, alice, events.UserJoinedEvent, nil)

		require.NoError(t, alice.FocusSection(ctx, doc, helper.Ptr("s2"), helper.Ptr("s2.1")))
		var focused events.UserFocused
		nextEvent(ctx, t, bob, events.UserFocusedEvent, &focused)
		assert.Equal(t, "u1", focused.UserID)
		assert.Equal(t, "s2", *focused.SectionID)
		assert.Equal(t, "s2.1", *focused.SubsectionID)

		checkedBy := &types.CheckedBy{UserID: "u2", UserName: "Bob", UserEmail: "bob@example.com"}
		require.NoError(t, bob.ToggleCheckbox(ctx, doc, "item-1", true, checkedBy, "2026-10-19T10:00:00Z"))
		var toggled events.CheckboxToggled
		nextEvent(ctx, t, alice, events.CheckboxToggledEvent, &toggled)
		assert.Equal(t, "item-1", toggled.ItemID)
		assert.True(t, toggled.Checked)
		assert.Equal(t, checkedBy, toggled.CheckedBy)
		assert.Equal(t, "2026-10-19T10:00:00Z", toggled.CheckedAt)
		assert.NotZero(t, toggled.Timestamp)

		// The focus is part of the presence replayed to later joiners.
		carol := helper.DialClient(t, defaultServer.CollabURL())
		require.NoError(t, carol.JoinDocument(ctx, doc, "u3", "Carol", ""))
		var replay []*types.Presence
		nextEvent(ctx, t, carol, events.PresencesUpdateEvent, &replay)
		require.Len(t, replay, 3)
		require.NotNil(t, replay[0].SectionID)
		assert.Equal(t, "s2", *replay[0].SectionID)
	})

	t.Run("concurrent editors test", func(t *testing.T) {
		const editors = 8
		const edits = 10
		doc := helper.TestDocumentID(t)

		clients := make([]*client.Client, editors)
		for i := range clients {
			clients[i] = helper.DialClient(t, defaultServer.CollabURL())
			require.NoError(t, clients[i].JoinDocument(ctx, doc, fmt.Sprintf("u%d", i), fmt.Sprintf("User%d", i), ""))
			nextEvent(ctx, t, clients[i], events.PresencesUpdateEvent, nil)
			for _, earlier := range clients[:i] {
				nextEvent(ctx, t, earlier, events.UserJoinedEvent, nil)
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		for i, cli := range clients {
			g.Go(func() error {
				for n := range edits {
					if err := cli.UpdateContent(gctx, doc, nil, nil, n); err != nil {
						return err
					}
				}
				return nil
			})

			g.Go(func() error {
				// Edits of each sender arrive in the order they were sent.
				lastSeen := make(map[string]int)
				for range (editors - 1) * edits {
					env, err := cli.Next(gctx)
					if err != nil {
						return err
					}
					if env.Event != events.ContentChangedEvent {
						return fmt.Errorf("client %d: unexpected %s", i, env.Event)
					}

					var changed events.ContentChanged
					if err := json.Unmarshal(env.Data, &changed); err != nil {
						return err
					}
					if changed.UserID == fmt.Sprintf("u%d", i) {
						return fmt.Errorf("client %d: echo of its own edit", i)
					}

					var n int
					if err := json.Unmarshal(changed.Content, &n); err != nil {
						return err
					}
					if prev, ok := lastSeen[changed.UserID]; ok && n != prev+1 {
						return fmt.Errorf("client %d: %s sent %d after %d", i, changed.UserID, n, prev)
					}
					lastSeen[changed.UserID] = n
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
	})
}
