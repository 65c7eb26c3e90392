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

// Package history provides a bounded, append-only log that evicts its
// oldest entry once the capacity is exceeded.
package history

// DefaultLimit is the default number of retained entries.
const DefaultLimit = 100

// Buffer is a FIFO ring of at most limit entries. It is not safe for
// concurrent use.
type Buffer[T any] struct {
	items []T
	head  int
	size  int
}

// New creates a buffer retaining at most limit entries. A non-positive limit
// falls back to DefaultLimit.
func New[T any](limit int) *Buffer[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Buffer[T]{items: make([]T, limit)}
}

// Append adds an entry, evicting the oldest one when the buffer is full.
func (b *Buffer[T]) Append(item T) {
	limit := len(b.items)
	b.items[(b.head+b.size)%limit] = item
	if b.size < limit {
		b.size++
		return
	}

	b.head = (b.head + 1) % limit
}

// Len returns the number of retained entries.
func (b *Buffer[T]) Len() int {
	return b.size
}

// Items returns the retained entries, oldest first.
func (b *Buffer[T]) Items() []T {
	items := make([]T, 0, b.size)
	for i := 0; i < b.size; i++ {
		items = append(items, b.items[(b.head+i)%len(b.items)])
	}
	return items
}

// Last returns the most recent entry.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}

	return b.items[(b.head+b.size-1)%len(b.items)], true
}
