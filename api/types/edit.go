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
	"encoding/json"
)

// CollaborativeEdit is an entry of the edit history of a document.
type CollaborativeEdit struct {
	UserID       string          `json:"userId"`
	UserName     string          `json:"userName"`
	DocumentID   DocumentID      `json:"documentId"`
	SectionID    *string         `json:"sectionId,omitempty"`
	SubsectionID *string         `json:"subsectionId,omitempty"`
	Content      json.RawMessage `json:"content"`
	Timestamp    int64           `json:"timestamp"`
}

// CheckedBy identifies the user who toggled a checklist item.
type CheckedBy struct {
	UserID    string `json:"userId" validate:"required"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
