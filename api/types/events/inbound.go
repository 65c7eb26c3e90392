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
	"fmt"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/pkg/errors"
)

var (
	// ErrMalformedFrame is returned when a frame is not a JSON envelope.
	ErrMalformedFrame = errors.InvalidArgument("malformed frame").WithCode("ErrMalformedFrame")

	// ErrUnknownEvent is returned when the event name is not an inbound event.
	ErrUnknownEvent = errors.InvalidArgument("unknown event").WithCode("ErrUnknownEvent")

	// ErrInvalidPayload is returned when the payload misses required fields.
	ErrInvalidPayload = errors.InvalidArgument("invalid payload").WithCode("ErrInvalidPayload")
)

// Payload is implemented by every inbound payload.
type Payload interface {
	// Document returns the document the payload is scoped to.
	Document() types.DocumentID
}

// JoinDocument is the payload of join-document.
type JoinDocument struct {
	DocumentID types.DocumentID `json:"documentId" validate:"required"`
	UserID     string           `json:"userId" validate:"required"`
	UserName   string           `json:"userName" validate:"required"`

	// Token is an identity token verified when the server has an auth secret.
	Token string `json:"token,omitempty"`
}

// CursorUpdate is the payload of cursor-update.
type CursorUpdate struct {
	DocumentID     types.DocumentID `json:"documentId" validate:"required"`
	SectionID      *string          `json:"sectionId,omitempty"`
	SubsectionID   *string          `json:"subsectionId,omitempty"`
	CursorPosition *int             `json:"cursorPosition,omitempty"`
}

// ContentUpdate is the payload of content-update. Content is opaque.
type ContentUpdate struct {
	DocumentID   types.DocumentID `json:"documentId" validate:"required"`
	SectionID    *string          `json:"sectionId,omitempty"`
	SubsectionID *string          `json:"subsectionId,omitempty"`
	Content      json.RawMessage  `json:"content" validate:"required"`
}

// SectionFocus is the payload of section-focus.
type SectionFocus struct {
	DocumentID   types.DocumentID `json:"documentId" validate:"required"`
	SectionID    *string          `json:"sectionId,omitempty"`
	SubsectionID *string          `json:"subsectionId,omitempty"`
}

// CheckboxToggle is the payload of checkbox-toggle.
type CheckboxToggle struct {
	DocumentID types.DocumentID `json:"documentId" validate:"required"`
	ItemID     string           `json:"itemId" validate:"required"`
	Checked    *bool            `json:"checked" validate:"required"`
	CheckedBy  *types.CheckedBy `json:"checkedBy" validate:"required"`
	CheckedAt  string           `json:"checkedAt"`
}

// Heartbeat is the payload of heartbeat.
type Heartbeat struct {
	DocumentID types.DocumentID `json:"documentId" validate:"required"`
}

// LeaveDocument is the payload of leave-document.
type LeaveDocument struct {
	DocumentID types.DocumentID `json:"documentId" validate:"required"`
}

// Document returns the document of the payload.
func (p *JoinDocument) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *CursorUpdate) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *ContentUpdate) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *SectionFocus) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *CheckboxToggle) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *Heartbeat) Document() types.DocumentID { return p.DocumentID }

// Document returns the document of the payload.
func (p *LeaveDocument) Document() types.DocumentID { return p.DocumentID }

// inboundPayloads creates an empty payload for each event clients may send.
var inboundPayloads = map[Type]func() Payload{
	JoinDocumentEvent:   func() Payload { return &JoinDocument{} },
	CursorUpdateEvent:   func() Payload { return &CursorUpdate{} },
	ContentUpdateEvent:  func() Payload { return &ContentUpdate{} },
	SectionFocusEvent:   func() Payload { return &SectionFocus{} },
	CheckboxToggleEvent: func() Payload { return &CheckboxToggle{} },
	HeartbeatEvent:      func() Payload { return &Heartbeat{} },
	LeaveDocumentEvent:  func() Payload { return &LeaveDocument{} },
}

// Decode parses an inbound frame into its event type and validated payload.
func Decode(frame []byte) (Type, Payload, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", ErrMalformedFrame)
	}

	if !env.Event.IsInbound() {
		return env.Event, nil, fmt.Errorf("event %q: %w", env.Event, ErrUnknownEvent)
	}
	payload := inboundPayloads[env.Event]()

	if len(env.Data) == 0 {
		return env.Event, nil, fmt.Errorf("%s: missing data: %w", env.Event, ErrInvalidPayload)
	}
	if err := json.Unmarshal(env.Data, payload); err != nil {
		return env.Event, nil, fmt.Errorf("%s: %s: %w", env.Event, err.Error(), ErrInvalidPayload)
	}
	if err := types.ValidateStruct(payload); err != nil {
		return env.Event, nil, fmt.Errorf("%s: %s: %w", env.Event, err.Error(), ErrInvalidPayload)
	}

	return env.Event, payload, nil
}
