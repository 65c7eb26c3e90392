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

package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/pkg/errors"
)

func TestDecode(t *testing.T) {
	t.Run("decode join-document test", func(t *testing.T) {
		typ, payload, err := events.Decode([]byte(
			`{"event":"join-document","data":{"documentId":"doc-1","userId":"u1","userName":"Alice"}}`,
		))
		require.NoError(t, err)
		assert.Equal(t, events.JoinDocumentEvent, typ)

		join, ok := payload.(*events.JoinDocument)
		require.True(t, ok)
		assert.Equal(t, types.DocumentID("doc-1"), join.Document())
		assert.Equal(t, "u1", join.UserID)
		assert.Equal(t, "Alice", join.UserName)
		assert.Empty(t, join.Token)
	})

	t.Run("decode optional fields test", func(t *testing.T) {
		_, payload, err := events.Decode([]byte(
			`{"event":"cursor-update","data":{"documentId":"doc-1","sectionId":"GEN-1","cursorPosition":42}}`,
		))
		require.NoError(t, err)

		cursor := payload.(*events.CursorUpdate)
		require.NotNil(t, cursor.SectionID)
		assert.Equal(t, "GEN-1", *cursor.SectionID)
		assert.Nil(t, cursor.SubsectionID)
		require.NotNil(t, cursor.CursorPosition)
		assert.Equal(t, 42, *cursor.CursorPosition)
	})

	t.Run("content is kept opaque test", func(t *testing.T) {
		_, payload, err := events.Decode([]byte(
			`{"event":"content-update","data":{"documentId":"doc-1","content":{"blocks":[1,2]}}}`,
		))
		require.NoError(t, err)
		assert.JSONEq(t, `{"blocks":[1,2]}`, string(payload.(*events.ContentUpdate).Content))
	})

	t.Run("decode checkbox-toggle test", func(t *testing.T) {
		_, payload, err := events.Decode([]byte(`{"event":"checkbox-toggle","data":{
			"documentId":"doc-1","itemId":"item-3","checked":false,
			"checkedBy":{"userId":"u1","userName":"Alice","userEmail":"alice@example.com"},
			"checkedAt":"2026-01-02T03:04:05Z"}}`))
		require.NoError(t, err)

		toggle := payload.(*events.CheckboxToggle)
		require.NotNil(t, toggle.Checked)
		assert.False(t, *toggle.Checked)
		assert.Equal(t, "alice@example.com", toggle.CheckedBy.UserEmail)
	})

	t.Run("malformed payloads test", func(t *testing.T) {
		tests := []struct {
			name  string
			frame string
			code  string
		}{
			{"not json", `{"event":`, "ErrMalformedFrame"},
			{"unknown event", `{"event":"delete-document","data":{"documentId":"doc-1"}}`, "ErrUnknownEvent"},
			{"outbound event", `{"event":"user-left","data":{"userId":"u1"}}`, "ErrUnknownEvent"},
			{"missing data", `{"event":"heartbeat"}`, "ErrInvalidPayload"},
			{"missing documentId", `{"event":"join-document","data":{"userId":"u1","userName":"Alice"}}`, "ErrInvalidPayload"},
			{"wrong type", `{"event":"cursor-update","data":{"documentId":"doc-1","cursorPosition":"x"}}`, "ErrInvalidPayload"},
			{"missing content", `{"event":"content-update","data":{"documentId":"doc-1"}}`, "ErrInvalidPayload"},
			{"missing checked", `{"event":"checkbox-toggle","data":{"documentId":"doc-1","itemId":"i","checkedBy":{"userId":"u1"}}}`, "ErrInvalidPayload"},
			{"missing checkedBy user", `{"event":"checkbox-toggle","data":{"documentId":"doc-1","itemId":"i","checked":true,"checkedBy":{}}}`, "ErrInvalidPayload"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, payload, err := events.Decode([]byte(tt.frame))
				assert.Nil(t, payload)
				assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))
				assert.Equal(t, tt.code, errors.CodeOf(err))
			})
		}
	})
}

func TestEncode(t *testing.T) {
	frame, err := events.Event{
		Type: events.UserLeftEvent,
		Data: &events.UserLeft{SessionID: "s1", UserID: "u1", UserName: "Alice"},
	}.Encode()
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, events.UserLeftEvent, env.Event)
	assert.JSONEq(t, `{"sessionId":"s1","userId":"u1","userName":"Alice"}`, string(env.Data))

	assert.True(t, events.HeartbeatEvent.IsInbound())
	assert.False(t, events.CursorMovedEvent.IsInbound())
}
