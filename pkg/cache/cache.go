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
 *
 * LRUExpireCache follows lruexpirecache.go of the Kubernetes repository:
 * https://github.com/kubernetes/kubernetes/blob/master/staging/src/k8s.io/apimachinery/pkg/util/cache/lruexpirecache.go
 */

// Package cache provides a size-bounded LRU cache whose entries expire.
package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

var (
	// ErrInvalidMaxSize is returned when the given max size is not positive.
	ErrInvalidMaxSize = errors.New("max size must be > 0")
)

// LRUExpireCache is a cache that ensures the mostly recently accessed keys are
// returned with a ttl beyond which keys are forcibly expired. It is safe for
// concurrent use.
type LRUExpireCache[K comparable, V any] struct {
	lock sync.Mutex

	now          func() time.Time
	maxSize      int
	evictionList list.List
	entries      map[K]*list.Element
}

type cacheEntry[K comparable, V any] struct {
	key        K
	value      V
	expireTime time.Time
}

// NewLRUExpireCache creates an expiring cache with the given size.
func NewLRUExpireCache[K comparable, V any](maxSize int) (*LRUExpireCache[K, V], error) {
	return NewLRUExpireCacheWithClock[K, V](maxSize, time.Now)
}

// NewLRUExpireCacheWithClock creates an expiring cache that reads the time
// from now.
func NewLRUExpireCacheWithClock[K comparable, V any](
	maxSize int,
	now func() time.Time,
) (*LRUExpireCache[K, V], error) {
	if maxSize <= 0 {
		return nil, ErrInvalidMaxSize
	}

	return &LRUExpireCache[K, V]{
		now:     now,
		maxSize: maxSize,
		entries: make(map[K]*list.Element),
	}, nil
}

// Add adds the value to the cache at key with the specified maximum duration.
// A non-positive ttl removes the key.
func (c *LRUExpireCache[K, V]) Add(key K, value V, ttl time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ttl <= 0 {
		c.remove(key)
		return
	}

	expireTime := c.now().Add(ttl)
	if element, ok := c.entries[key]; ok {
		c.evictionList.MoveToFront(element)
		entry := element.Value.(*cacheEntry[K, V])
		entry.value = value
		entry.expireTime = expireTime
		return
	}

	if c.evictionList.Len() >= c.maxSize {
		toEvict := c.evictionList.Back()
		c.evictionList.Remove(toEvict)
		delete(c.entries, toEvict.Value.(*cacheEntry[K, V]).key)
	}

	c.entries[key] = c.evictionList.PushFront(&cacheEntry[K, V]{
		key:        key,
		value:      value,
		expireTime: expireTime,
	})
}

// Get returns the value at the specified key from the cache if it exists and
// is not expired, or returns false.
func (c *LRUExpireCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var zero V
	element, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := element.Value.(*cacheEntry[K, V])
	if !c.now().Before(entry.expireTime) {
		c.evictionList.Remove(element)
		delete(c.entries, key)
		return zero, false
	}

	c.evictionList.MoveToFront(element)
	return entry.value, true
}

// Remove removes the key from the cache.
func (c *LRUExpireCache[K, V]) Remove(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.remove(key)
}

// Len returns the number of entries, expired ones included.
func (c *LRUExpireCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictionList.Len()
}

func (c *LRUExpireCache[K, V]) remove(key K) {
	if element, ok := c.entries[key]; ok {
		c.evictionList.Remove(element)
		delete(c.entries, key)
	}
}
