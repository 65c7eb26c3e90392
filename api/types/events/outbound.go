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

package events

import (
	"encoding/json"

	"github.com/yorkie-team/coedit/api/types"
)

// CursorMoved is the payload of cursor-moved.
type CursorMoved struct {
	SessionID      types.SessionID `json:"sessionId"`
	UserID         string          `json:"userId"`
	UserName       string          `json:"userName"`
	UserColor      types.Color     `json:"userColor"`
	SectionID      *string         `json:"sectionId,omitempty"`
	SubsectionID   *string         `json:"subsectionId,omitempty"`
	CursorPosition *int            `json:"cursorPosition,omitempty"`
}

// ContentChanged is the payload of content-changed.
type ContentChanged struct {
	UserID       string          `json:"userId"`
	UserName     string          `json:"userName"`
	UserColor    types.Color     `json:"userColor"`
	SectionID    *string         `json:"sectionId,omitempty"`
	SubsectionID *string         `json:"subsectionId,omitempty"`
	Content      json.RawMessage `json:"content"`
	Timestamp    int64           `json:"timestamp"`
}

// UserFocused is the payload of user-focused.
type UserFocused struct {
	UserID       string      `json:"userId"`
	UserName     string      `json:"userName"`
	UserColor    types.Color `json:"userColor"`
	SectionID    *string     `json:"sectionId,omitempty"`
	SubsectionID *string     `json:"subsectionId,omitempty"`
}

// CheckboxToggled is the payload of checkbox-toggled.
type CheckboxToggled struct {
	ItemID    string           `json:"itemId"`
	Checked   bool             `json:"checked"`
	CheckedBy *types.CheckedBy `json:"checkedBy"`
	CheckedAt string           `json:"checkedAt"`
	Timestamp int64            `json:"timestamp"`
}

// UserLeft is the payload of user-left.
type UserLeft struct {
	SessionID types.SessionID `json:"sessionId"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
}

// JoinRejected is the payload of join-rejected.
type JoinRejected struct {
	DocumentID types.DocumentID `json:"documentId"`
	Reason     string           `json:"reason"`
}
