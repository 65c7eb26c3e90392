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

package types

import (
	"time"
)

// SessionID is the opaque identifier of one websocket connection. It is
// never reused while the connection is open.
type SessionID string

// String returns the string representation of the SessionID.
func (id SessionID) String() string {
	return string(id)
}

// DocumentID is the opaque identifier of a document. The core never reads
// the document itself.
type DocumentID string

// String returns the string representation of the DocumentID.
func (id DocumentID) String() string {
	return string(id)
}

// RoomKey returns the key of the room that broadcasts of the document are
// scoped to, e.g. "document:doc-1".
func (id DocumentID) RoomKey() string {
	return "document:" + string(id)
}

// Color is a display color of a user, one of the fixed palette entries.
type Color string

// Presence is the live state of one session's participation in one document.
type Presence struct {
	SessionID      SessionID  `json:"sessionId" yaml:"sessionId"`
	UserID         string     `json:"userId" yaml:"userId"`
	UserName       string     `json:"userName" yaml:"userName"`
	UserColor      Color      `json:"userColor" yaml:"userColor"`
	DocumentID     DocumentID `json:"documentId" yaml:"documentId"`
	SectionID      *string    `json:"sectionId,omitempty" yaml:"sectionId,omitempty"`
	SubsectionID   *string    `json:"subsectionId,omitempty" yaml:"subsectionId,omitempty"`
	CursorPosition *int       `json:"cursorPosition,omitempty" yaml:"cursorPosition,omitempty"`

	// LastActivity is the epoch millisecond of the last inbound event of the
	// session for this document.
	LastActivity int64 `json:"lastActivity" yaml:"lastActivity"`
}

// DeepCopy returns a copy of the presence that shares no pointers with it.
func (p *Presence) DeepCopy() *Presence {
	if p == nil {
		return nil
	}

	clone := *p
	clone.SectionID = copyString(p.SectionID)
	clone.SubsectionID = copyString(p.SubsectionID)
	if p.CursorPosition != nil {
		pos := *p.CursorPosition
		clone.CursorPosition = &pos
	}
	return &clone
}

// Touch refreshes the last activity of the presence.
func (p *Presence) Touch(now time.Time) {
	p.LastActivity = now.UnixMilli()
}

// IdleSince returns how long the presence has been inactive at the given time.
func (p *Presence) IdleSince(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-p.LastActivity) * time.Millisecond
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
