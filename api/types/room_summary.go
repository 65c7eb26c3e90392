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

// RoomSummary represents a summary of a room for the admin listing.
type RoomSummary struct {
	// DocumentID is the document the room is keyed by.
	DocumentID DocumentID `json:"documentId" yaml:"documentId"`

	// Presences is the number of sessions present in the room.
	Presences int `json:"presences" yaml:"presences"`

	// Edits is the number of edits retained in the edit history.
	Edits int `json:"edits" yaml:"edits"`

	// LastActivity is the most recent activity of any presence in the room.
	LastActivity time.Time `json:"lastActivity" yaml:"lastActivity"`

	// LastEditAt is the time of the most recent retained edit. It is zero
	// when the history is empty.
	LastEditAt time.Time `json:"lastEditAt" yaml:"lastEditAt"`
}
