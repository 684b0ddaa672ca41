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

package modes

func getBits(word uint64, offset, width uint) uint64 {
	return (word >> offset) & (uint64(1)<<width - 1)
}

func setBits(word *uint64, offset, width uint, value uint64) {
	mask := (uint64(1)<<width - 1) << offset
	*word = (*word &^ mask) | (value<<offset)&mask
}

// Slot targets are stored as signed 5-bit values so OffIndex survives.

func encodeTarget(target int) uint64 {
	return uint64(target) & 0x1F //nolint:gosec // two's complement truncation
}

func decodeTarget(bits uint64) int {
	v := int(bits & 0x1F) //nolint:gosec // masked to 5 bits
	if v > 15 {
		v -= 32
	}
	return v
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
