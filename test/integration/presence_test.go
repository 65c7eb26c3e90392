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

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/pkg/color"
	"github.com/yorkie-team/coedit/test/helper"
)

func TestPresence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("alice and bob test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, defaultServer.CollabURL())
		bob := helper.DialClient(t, defaultServer.CollabURL())

		// Alice joins an empty document and sees only herself.
		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Alice", ""))
		var replay []*types.Presence
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, &replay)
		require.Len(t, replay, 1)
		assert.Equal(t, "u1", replay[0].UserID)
		assert.Equal(t, color.Assign("u1"), replay[0].UserColor)
		assert.Equal(t, doc, replay[0].DocumentID)

		// Bob joins; he sees both and Alice learns about him.
		require.NoError(t, bob.JoinDocument(ctx, doc, "u2", "Bob", ""))
		nextEvent(ctx, t, bob, events.PresencesUpdateEvent, &replay)
		require.Len(t, replay, 2)
		assert.Equal(t, "u1", replay[0].UserID)
		assert.Equal(t, "u2", replay[1].UserID)

		var joined types.Presence
		nextEvent(ctx, t, alice, events.UserJoinedEvent, &joined)
		assert.Equal(t, "Bob", joined.UserName)
		assert.Equal(t, color.Assign("u2"), joined.UserColor)

		// Alice moves her cursor; only Bob hears about it.
		require.NoError(t, alice.UpdateCursor(ctx, doc, helper.Ptr("s1"), nil, helper.Ptr(5)))
		var moved events.CursorMoved
		nextEvent(ctx, t, bob, events.CursorMovedEvent, &moved)
		assert.Equal(t, "u1", moved.UserID)
		assert.Equal(t, "s1", *moved.SectionID)
		assert.Equal(t, 5, *moved.CursorPosition)

		// Bob edits; only Alice hears about it.
		require.NoError(t, bob.UpdateContent(ctx, doc, helper.Ptr("s1"), nil, "hello"))
		var changed events.ContentChanged
		nextEvent(ctx, t, alice, events.ContentChangedEvent, &changed)
		assert.Equal(t, "u2", changed.UserID)
		assert.JSONEq(t, `"hello"`, string(changed.Content))
		assert.NotZero(t, changed.Timestamp)

		// Neither got an echo of its own event.
		assertNoEvent(t, alice)
		assertNoEvent(t, bob)

		// Bob disconnects; Alice sees him leave.
		require.NoError(t, bob.Close())
		var left events.UserLeft
		nextEvent(ctx, t, alice, events.UserLeftEvent, &left)
		assert.Equal(t, "u2", left.UserID)
		assert.Equal(t, "Bob", left.UserName)
	})

	t.Run("explicit leave test", func(t *testing.T) {
		doc := helper.TestDocumentID(t)
		alice := helper.DialClient(t, defaultServer.CollabURL())
		bob := helper.DialClient(t, defaultServer.CollabURL())

		require.NoError(t, alice.JoinDocument(ctx, doc, "u1", "Alice", ""))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)
		require.NoError(t, bob.JoinDocument(ctx, doc, "u2", "Bob", ""))
		nextEvent(ctx, t, bob, events.PresencesUpdateEvent, nil)
		nextEvent(ctx, t, alice, events.UserJoinedEvent, nil)

		require.NoError(t, bob.LeaveDocument(ctx, doc))
		require.NoError(t, bob.LeaveDocument(ctx, doc))
		nextEvent(ctx, t, alice, events.UserLeftEvent, nil)
		assertNoEvent(t, alice)

		// Events of a left presence are dropped.
		require.NoError(t, bob.UpdateCursor(ctx, doc, helper.Ptr("s1"), nil, nil))
		assertNoEvent(t, alice)
	})

	t.Run("one session in many documents test", func(t *testing.T) {
		doc1 := helper.TestDocumentID(t)
		doc2 := helper.TestDocumentID(t)
		alice := helper.DialClient(t, defaultServer.CollabURL())
		bob := helper.DialClient(t, defaultServer.CollabURL())
		carol := helper.DialClient(t, defaultServer.CollabURL())

		require.NoError(t, alice.JoinDocument(ctx, doc1, "u1", "Alice", ""))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)
		require.NoError(t, alice.JoinDocument(ctx, doc2, "u1", "Alice", ""))
		nextEvent(ctx, t, alice, events.PresencesUpdateEvent, nil)

		require.NoError(t, bob.JoinDocument(ctx, doc1, "u2", "Bob", ""))
		nextEvent(ctx, t, bob, events.PresencesUpdateEvent, nil)
		nextEvent(ctx, t, alice, events.UserJoinedEvent, nil)
		require.NoError(t, carol.JoinDocument(ctx, doc2, "u3", "Carol", ""))
		nextEvent(ctx, t, carol, events.PresencesUpdateEvent, nil)
		nextEvent(ctx, t, alice, events.UserJoinedEvent, nil)

		// Edits stay in their document.
		require.NoError(t, bob.UpdateContent(ctx, doc1, nil, nil, "only doc1"))
		nextEvent(ctx, t, alice, events.ContentChangedEvent, nil)
		assertNoEvent(t, carol)

		// Closing Alice leaves both documents.
		require.NoError(t, alice.Close())
		nextEvent(ctx, t, bob, events.UserLeftEvent, nil)
		nextEvent(ctx, t, carol, events.UserLeftEvent, nil)
	})
}
