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

// Package events defines the wire events exchanged between coedit and its
// clients. Every frame is a JSON envelope {"event": <name>, "data": <payload>}.
package events

import (
	"encoding/json"
)

// Type is the name of an event on the wire.
type Type string

// Inbound events, sent by clients.
const (
	// JoinDocumentEvent registers the presence of the session in a document.
	JoinDocumentEvent Type = "join-document"

	// CursorUpdateEvent moves the cursor of the session.
	CursorUpdateEvent Type = "cursor-update"

	// ContentUpdateEvent carries an edit of a section.
	ContentUpdateEvent Type = "content-update"

	// SectionFocusEvent moves the focus of the session to another section.
	SectionFocusEvent Type = "section-focus"

	// CheckboxToggleEvent toggles an item of a checklist.
	CheckboxToggleEvent Type = "checkbox-toggle"

	// HeartbeatEvent refreshes the liveness of the presence.
	HeartbeatEvent Type = "heartbeat"

	// LeaveDocumentEvent removes the presence of the session from a document.
	LeaveDocumentEvent Type = "leave-document"
)

// Outbound events, sent by the server.
const (
	// PresencesUpdateEvent replays the full presence set to a joining session.
	PresencesUpdateEvent Type = "presences-update"

	// UserJoinedEvent announces a new presence to the rest of the room.
	UserJoinedEvent Type = "user-joined"

	// CursorMovedEvent announces a cursor move.
	CursorMovedEvent Type = "cursor-moved"

	// ContentChangedEvent announces an edit.
	ContentChangedEvent Type = "content-changed"

	// UserFocusedEvent announces a focus change.
	UserFocusedEvent Type = "user-focused"

	// CheckboxToggledEvent announces a checklist toggle.
	CheckboxToggledEvent Type = "checkbox-toggled"

	// UserLeftEvent announces that a presence left or was evicted.
	UserLeftEvent Type = "user-left"

	// JoinRejectedEvent tells a joining session that its identity token was
	// refused.
	JoinRejectedEvent Type = "join-rejected"
)

// IsInbound returns whether clients are allowed to send the event.
func (t Type) IsInbound() bool {
	_, ok := inboundPayloads[t]
	return ok
}

// Envelope is the frame of every message on the wire.
type Envelope struct {
	Event Type            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is a named outbound payload ready to be encoded.
type Event struct {
	Type Type
	Data any
}

// Encode marshals the event into an envelope frame.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: e.Type, Data: data})
}
