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

// Package color assigns display colors to users.
package color

import (
	"unicode/utf16"

	"github.com/yorkie-team/coedit/api/types"
)

// Palette is the fixed, ordered set of user colors.
var Palette = [...]types.Color{
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // amber
	"#EF4444", // red
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
}

// Assign returns the palette color of the given user. The hash runs over the
// UTF-16 code units of userID. Only the shifted term is truncated to 32 bits,
// the subtraction and addition are not, so the result matches browsers that
// compute the same hash locally.
func Assign(userID string) types.Color {
	var hash int64
	for _, c := range utf16.Encode([]rune(userID)) {
		hash = int64(c) + int64(int32(uint32(hash))<<5) - hash
	}

	if hash < 0 {
		hash = -hash
	}
	return Palette[hash%int64(len(Palette))]
}

// Contains returns whether c is one of the palette colors.
func Contains(c types.Color) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}
