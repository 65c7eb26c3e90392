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

package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/coedit/pkg/history"
)

func TestBuffer(t *testing.T) {
	t.Run("keeps the most recent entries in order test", func(t *testing.T) {
		buf := history.New[int](100)
		for i := 0; i < 150; i++ {
			buf.Append(i)
		}

		items := buf.Items()
		assert.Equal(t, 100, buf.Len())
		assert.Len(t, items, 100)
		for i, item := range items {
			assert.Equal(t, 50+i, item)
		}

		last, ok := buf.Last()
		assert.True(t, ok)
		assert.Equal(t, 149, last)
	})

	t.Run("below capacity test", func(t *testing.T) {
		buf := history.New[string](3)
		_, ok := buf.Last()
		assert.False(t, ok)
		assert.Empty(t, buf.Items())

		buf.Append("a")
		buf.Append("b")
		assert.Equal(t, []string{"a", "b"}, buf.Items())

		buf.Append("c")
		buf.Append("d")
		assert.Equal(t, []string{"b", "c", "d"}, buf.Items())
	})

	t.Run("default limit test", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			buf := history.New[int](limit)
			for i := 0; i < history.DefaultLimit+1; i++ {
				buf.Append(i)
			}
			assert.Equal(t, history.DefaultLimit, buf.Len())
			assert.Equal(t, 1, buf.Items()[0])
		}
	})

	t.Run("items are a copy test", func(t *testing.T) {
		buf := history.New[int](2)
		buf.Append(1)
		items := buf.Items()
		items[0] = 42
		assert.Equal(t, []int{1}, buf.Items())
	})
}
