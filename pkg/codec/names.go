// Wordclock Core
// Copyright (c) 2026 The Wordclock Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Wordclock Core.
//
// Wordclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wordclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Wordclock Core.  If not, see <http://www.gnu.org/licenses/>.

package codec

import (
	"strings"

	"github.com/wordclock/wordclock-core/pkg/modes"
)

// PackNames stores the slot names as consecutive NUL terminated strings.
// A name is only written when it leaves at least one byte for every slot
// after it; otherwise the slot gets an empty name. The returned flags report
// which names were stored in full.
func PackNames(names [modes.SlotCount]string) ([NameBudget]byte, [modes.SlotCount]bool) {
	var buf [NameBudget]byte
	var stored [modes.SlotCount]bool
	used := 0
	for i, name := range names {
		if n := strings.IndexByte(name, 0); n >= 0 {
			name = name[:n]
		}
		remaining := modes.SlotCount - i
		if len(name) <= NameBudget-used-remaining {
			used += copy(buf[used:], name)
			stored[i] = true
		}
		// terminator; the budget check above always leaves room for it
		buf[used] = 0
		used++
	}
	return buf, stored
}

// UnpackNames reads the names written by PackNames. A buffer that runs out
// before all terminators are found yields empty names for the rest.
func UnpackNames(buf [NameBudget]byte) [modes.SlotCount]string {
	var names [modes.SlotCount]string
	pos := 0
	for i := range names {
		if pos >= len(buf) {
			break
		}
		end := pos
		for end < len(buf) && buf[end] != 0 {
			end++
		}
		if end == len(buf) {
			break
		}
		names[i] = string(buf[pos:end])
		pos = end + 1
	}
	return names
}
