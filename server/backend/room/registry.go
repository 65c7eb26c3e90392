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

// Package room provides the presence registry of coedit. The registry maps
// each document to the set of sessions present in it and plans the
// deliveries every operation causes. It is owned by a single goroutine and
// is not safe for concurrent use.
package room

import (
	"encoding/json"
	"sort"
	gotime "time"

	"github.com/yorkie-team/coedit/api/types"
	"github.com/yorkie-team/coedit/api/types/events"
	"github.com/yorkie-team/coedit/pkg/color"
	"github.com/yorkie-team/coedit/pkg/errors"
	"github.com/yorkie-team/coedit/pkg/history"
)

var (
	// ErrPresenceNotFound is returned when an operation references a document
	// the session has not joined, or a presence that was already swept.
	ErrPresenceNotFound = errors.NotFound("presence not found").WithCode("ErrPresenceNotFound")
)

const (
	// DefaultPresenceTTL is the inactivity threshold after which a presence
	// is evicted.
	DefaultPresenceTTL = 30 * gotime.Second
)

// Delivery is an event to enqueue on the outbound queue of every listed
// session.
type Delivery struct {
	To    []types.SessionID
	Event events.Event
}

// Eviction is a presence removed by a sweep.
type Eviction struct {
	Presence *types.Presence
	Idle     gotime.Duration
}

// SweepResult is the outcome of a sweep.
type SweepResult struct {
	Evictions    []Eviction
	RemovedRooms []types.DocumentID
	Deliveries   []Delivery
}

type member struct {
	presence *types.Presence
	seq      uint64
}

// docRoom is the set of sessions present in a document and the edit history
// of the document.
type docRoom struct {
	documentID types.DocumentID
	members    map[types.SessionID]*member
	edits      *history.Buffer[*types.CollaborativeEdit]
}

// Len returns the number of presences in the room.
func (r *docRoom) Len() int {
	return len(r.members)
}

// sorted returns the members in join order.
func (r *docRoom) sorted() []*member {
	members := make([]*member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].seq < members[j].seq
	})
	return members
}

// others returns the sessions of the room except the given one, in join order.
func (r *docRoom) others(except types.SessionID) []types.SessionID {
	var to []types.SessionID
	for _, m := range r.sorted() {
		if m.presence.SessionID != except {
			to = append(to, m.presence.SessionID)
		}
	}
	return to
}

// Registry is the presence registry and room router.
type Registry struct {
	rooms map[types.DocumentID]*docRoom

	// sessions is a reverse index from a session to the documents it joined.
	sessions map[types.SessionID]map[types.DocumentID]struct{}

	ttl          gotime.Duration
	historyLimit int
	now          func() gotime.Time
	seq          uint64
}

// NewRegistry creates a registry. A zero ttl or historyLimit falls back to
// the defaults, and a nil clock to time.Now.
func NewRegistry(ttl gotime.Duration, historyLimit int, now func() gotime.Time) *Registry {
	if ttl == 0 {
		ttl = DefaultPresenceTTL
	}
	if historyLimit <= 0 {
		historyLimit = history.DefaultLimit
	}
	if now == nil {
		now = gotime.Now
	}

	return &Registry{
		rooms:        make(map[types.DocumentID]*docRoom),
		sessions:     make(map[types.SessionID]map[types.DocumentID]struct{}),
		ttl:          ttl,
		historyLimit: historyLimit,
		now:          now,
	}
}

// Join records the presence of the session in the document. The joiner
// receives the full presence set, including its own entry, and the rest of
// the room receives user-joined. Joining a document twice replaces the
// previous presence.
func (r *Registry) Join(
	documentID types.DocumentID,
	sessionID types.SessionID,
	userID string,
	userName string,
) (*types.Presence, []Delivery) {
	rm, ok := r.rooms[documentID]
	if !ok {
		rm = &docRoom{
			documentID: documentID,
			members:    make(map[types.SessionID]*member),
			edits:      history.New[*types.CollaborativeEdit](r.historyLimit),
		}
		r.rooms[documentID] = rm
	}

	presence := &types.Presence{
		SessionID:  sessionID,
		UserID:     userID,
		UserName:   userName,
		UserColor:  color.Assign(userID),
		DocumentID: documentID,
	}
	presence.Touch(r.now())

	r.seq++
	rm.members[sessionID] = &member{presence: presence, seq: r.seq}
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = make(map[types.DocumentID]struct{})
	}
	r.sessions[sessionID][documentID] = struct{}{}

	var deliveries []Delivery
	if to := rm.others(sessionID); len(to) > 0 {
		deliveries = append(deliveries, Delivery{
			To:    to,
			Event: events.Event{Type: events.UserJoinedEvent, Data: presence.DeepCopy()},
		})
	}

	members := rm.sorted()
	replay := make([]*types.Presence, 0, len(members))
	for _, m := range members {
		replay = append(replay, m.presence.DeepCopy())
	}
	deliveries = append(deliveries, Delivery{
		To:    []types.SessionID{sessionID},
		Event: events.Event{Type: events.PresencesUpdateEvent, Data: replay},
	})

	return presence.DeepCopy(), deliveries
}

// UpdateCursor moves the cursor of the presence and broadcasts cursor-moved.
// Only the supplied fields are stored; the broadcast carries them as sent.
func (r *Registry) UpdateCursor(
	documentID types.DocumentID,
	sessionID types.SessionID,
	sectionID, subsectionID *string,
	cursorPosition *int,
) ([]Delivery, error) {
	rm, presence, err := r.touch(documentID, sessionID)
	if err != nil {
		return nil, err
	}

	if sectionID != nil {
		presence.SectionID = sectionID
	}
	if subsectionID != nil {
		presence.SubsectionID = subsectionID
	}
	if cursorPosition != nil {
		presence.CursorPosition = cursorPosition
	}

	return broadcast(rm, sessionID, events.CursorMovedEvent, &events.CursorMoved{
		SessionID:      sessionID,
		UserID:         presence.UserID,
		UserName:       presence.UserName,
		UserColor:      presence.UserColor,
		SectionID:      sectionID,
		SubsectionID:   subsectionID,
		CursorPosition: cursorPosition,
	}), nil
}

// UpdateContent appends an edit to the history of the document and
// broadcasts content-changed.
func (r *Registry) UpdateContent(
	documentID types.DocumentID,
	sessionID types.SessionID,
	sectionID, subsectionID *string,
	content json.RawMessage,
) ([]Delivery, error) {
	rm, presence, err := r.touch(documentID, sessionID)
	if err != nil {
		return nil, err
	}

	edit := &types.CollaborativeEdit{
		UserID:       presence.UserID,
		UserName:     presence.UserName,
		DocumentID:   documentID,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
		Content:      content,
		Timestamp:    presence.LastActivity,
	}
	rm.edits.Append(edit)

	return broadcast(rm, sessionID, events.ContentChangedEvent, &events.ContentChanged{
		UserID:       presence.UserID,
		UserName:     presence.UserName,
		UserColor:    presence.UserColor,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
		Content:      content,
		Timestamp:    edit.Timestamp,
	}), nil
}

// UpdateFocus moves the focus of the presence and broadcasts user-focused.
func (r *Registry) UpdateFocus(
	documentID types.DocumentID,
	sessionID types.SessionID,
	sectionID, subsectionID *string,
) ([]Delivery, error) {
	rm, presence, err := r.touch(documentID, sessionID)
	if err != nil {
		return nil, err
	}

	if sectionID != nil {
		presence.SectionID = sectionID
	}
	if subsectionID != nil {
		presence.SubsectionID = subsectionID
	}

	return broadcast(rm, sessionID, events.UserFocusedEvent, &events.UserFocused{
		UserID:       presence.UserID,
		UserName:     presence.UserName,
		UserColor:    presence.UserColor,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
	}), nil
}

// ToggleCheckbox broadcasts checkbox-toggled with a server timestamp next
// to the caller supplied checkedAt.
func (r *Registry) ToggleCheckbox(
	documentID types.DocumentID,
	sessionID types.SessionID,
	itemID string,
	checked bool,
	checkedBy *types.CheckedBy,
	checkedAt string,
) ([]Delivery, error) {
	rm, presence, err := r.touch(documentID, sessionID)
	if err != nil {
		return nil, err
	}

	return broadcast(rm, sessionID, events.CheckboxToggledEvent, &events.CheckboxToggled{
		ItemID:    itemID,
		Checked:   checked,
		CheckedBy: checkedBy,
		CheckedAt: checkedAt,
		Timestamp: presence.LastActivity,
	}), nil
}

// Heartbeat refreshes the liveness of the presence. It returns false when
// there is no presence, e.g. because it was already swept.
func (r *Registry) Heartbeat(documentID types.DocumentID, sessionID types.SessionID) bool {
	_, _, err := r.touch(documentID, sessionID)
	return err == nil
}

// Leave removes the presence and broadcasts user-left. Leaving a document
// without a presence does nothing.
func (r *Registry) Leave(documentID types.DocumentID, sessionID types.SessionID) []Delivery {
	rm, ok := r.rooms[documentID]
	if !ok {
		return nil
	}
	m, ok := rm.members[sessionID]
	if !ok {
		return nil
	}

	r.remove(rm, sessionID)
	return leftDeliveries(rm, m.presence)
}

// LeaveAll removes every presence of the session, used when its connection
// terminates.
func (r *Registry) LeaveAll(sessionID types.SessionID) []Delivery {
	docs := make([]types.DocumentID, 0, len(r.sessions[sessionID]))
	for documentID := range r.sessions[sessionID] {
		docs = append(docs, documentID)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })

	var deliveries []Delivery
	for _, documentID := range docs {
		deliveries = append(deliveries, r.Leave(documentID, sessionID)...)
	}
	return deliveries
}

// Sweep evicts every presence inactive for at least the ttl, announcing each
// eviction with user-left, then removes every empty room with its history.
func (r *Registry) Sweep() SweepResult {
	now := r.now()

	var result SweepResult
	for _, rm := range r.sortedRooms() {
		for _, m := range rm.sorted() {
			idle := m.presence.IdleSince(now)
			if idle < r.ttl {
				continue
			}

			r.remove(rm, m.presence.SessionID)
			result.Evictions = append(result.Evictions, Eviction{Presence: m.presence, Idle: idle})
			result.Deliveries = append(result.Deliveries, leftDeliveries(rm, m.presence)...)
		}

		if rm.Len() == 0 {
			delete(r.rooms, rm.documentID)
			result.RemovedRooms = append(result.RemovedRooms, rm.documentID)
		}
	}

	return result
}

// Presences returns the presences of the document in join order.
func (r *Registry) Presences(documentID types.DocumentID) []*types.Presence {
	rm, ok := r.rooms[documentID]
	if !ok {
		return nil
	}

	var presences []*types.Presence
	for _, m := range rm.sorted() {
		presences = append(presences, m.presence.DeepCopy())
	}
	return presences
}

// Summaries returns a summary of every room ordered by document.
func (r *Registry) Summaries() []*types.RoomSummary {
	var summaries []*types.RoomSummary
	for _, rm := range r.sortedRooms() {
		summary := &types.RoomSummary{
			DocumentID: rm.documentID,
			Presences:  rm.Len(),
			Edits:      rm.edits.Len(),
		}
		var last int64
		for _, m := range rm.members {
			if m.presence.LastActivity > last {
				last = m.presence.LastActivity
			}
		}
		if last > 0 {
			summary.LastActivity = gotime.UnixMilli(last)
		}
		if edit, ok := rm.edits.Last(); ok {
			summary.LastEditAt = gotime.UnixMilli(edit.Timestamp)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// Stats returns the number of rooms and presences.
func (r *Registry) Stats() (rooms int, presences int) {
	for _, rm := range r.rooms {
		presences += rm.Len()
	}
	return len(r.rooms), presences
}

// touch returns the room and presence of the pair and refreshes its
// activity.
func (r *Registry) touch(
	documentID types.DocumentID,
	sessionID types.SessionID,
) (*docRoom, *types.Presence, error) {
	rm, ok := r.rooms[documentID]
	if !ok {
		return nil, nil, ErrPresenceNotFound
	}
	m, ok := rm.members[sessionID]
	if !ok {
		return nil, nil, ErrPresenceNotFound
	}

	m.presence.Touch(r.now())
	return rm, m.presence, nil
}

func (r *Registry) remove(rm *docRoom, sessionID types.SessionID) {
	delete(rm.members, sessionID)

	docs, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(docs, rm.documentID)
	if len(docs) == 0 {
		delete(r.sessions, sessionID)
	}
}

func (r *Registry) sortedRooms() []*docRoom {
	rooms := make([]*docRoom, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].documentID < rooms[j].documentID
	})
	return rooms
}

func broadcast(rm *docRoom, sender types.SessionID, typ events.Type, data any) []Delivery {
	to := rm.others(sender)
	if len(to) == 0 {
		return nil
	}

	return []Delivery{{To: to, Event: events.Event{Type: typ, Data: data}}}
}

func leftDeliveries(rm *docRoom, presence *types.Presence) []Delivery {
	return broadcast(rm, presence.SessionID, events.UserLeftEvent, &events.UserLeft{
		SessionID: presence.SessionID,
		UserID:    presence.UserID,
		UserName:  presence.UserName,
	})
}
