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

package display

const (
	GlyphWidth  = 3
	GlyphHeight = 5
)

// 3x5 digit glyphs, one row per entry, most significant bit on the left.
var digitGlyphs = [10][GlyphHeight]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111},
	{0b010, 0b110, 0b010, 0b010, 0b111},
	{0b111, 0b001, 0b111, 0b100, 0b111},
	{0b111, 0b001, 0b111, 0b001, 0b111},
	{0b101, 0b101, 0b111, 0b001, 0b001},
	{0b111, 0b100, 0b111, 0b001, 0b111},
	{0b111, 0b100, 0b111, 0b101, 0b111},
	{0b111, 0b001, 0b010, 0b010, 0b010},
	{0b111, 0b101, 0b111, 0b101, 0b111},
	{0b111, 0b101, 0b111, 0b001, 0b111},
}

// DrawDigit draws a single decimal digit with its top-left corner at x,y.
// Values outside 0-9 are ignored.
func DrawDigit(s Surface, x, y, digit int, color uint8) {
	if digit < 0 || digit > 9 {
		return
	}
	for row, bits := range digitGlyphs[digit] {
		for col := range GlyphWidth {
			if bits&(1<<(GlyphWidth-1-col)) != 0 {
				s.SetPixel(x+col, y+row, color)
			}
		}
	}
}

// DrawNumber draws a two digit, zero padded number starting at x,y with one
// column of spacing between the digits.
func DrawNumber(s Surface, x, y, number int, color uint8) {
	number %= 100
	DrawDigit(s, x, y, number/10, color)
	DrawDigit(s, x+GlyphWidth+1, y, number%10, color)
}
