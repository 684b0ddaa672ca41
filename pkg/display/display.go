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

// Package display models the LED matrix the modes draw on: an 11x11 letter
// grid plus a row of four minute indicator LEDs.
package display

const (
	Width      = 11
	Height     = 11
	Indicators = 4
	// IndicatorRow addresses the minute indicator LEDs through SetPixel.
	IndicatorRow = Height
	// MaxBrightness is the top of the brightness scale used by modes.
	MaxBrightness = 100
)

// Surface is the rendering collaborator handed to mode handlers. Colors are
// palette indices, never RGB values.
type Surface interface {
	Clear()
	SetPixel(x, y int, color uint8)
	SetBrightness(level uint8)
}

// Snapshot is a copy of everything currently lit on a Grid.
type Snapshot struct {
	Pixels     [Height][Width]uint8
	Indicators [Indicators]uint8
	Brightness uint8
}

// Grid is the in-memory Surface. It is not safe for concurrent use; the
// service goroutine owns it.
type Grid struct {
	snap Snapshot
}

func NewGrid() *Grid {
	return &Grid{}
}

func (g *Grid) Clear() {
	g.snap.Pixels = [Height][Width]uint8{}
	g.snap.Indicators = [Indicators]uint8{}
}

func (g *Grid) SetPixel(x, y int, color uint8) {
	if x < 0 || y < 0 {
		return
	}
	if y == IndicatorRow {
		if x < Indicators {
			g.snap.Indicators[x] = color
		}
		return
	}
	if x >= Width || y >= Height {
		return
	}
	g.snap.Pixels[y][x] = color
}

func (g *Grid) SetBrightness(level uint8) {
	if level > MaxBrightness {
		level = MaxBrightness
	}
	g.snap.Brightness = level
}

func (g *Grid) Snapshot() Snapshot {
	return g.snap
}

// RowKey is the single character key used for a grid row in documents:
// rows 0-9 map to '0'-'9' and row 10 maps to 'a'.
func RowKey(row int) string {
	const digits = "0123456789abcdef"
	if row < 0 || row >= len(digits) {
		return ""
	}
	return digits[row : row+1]
}

// IndicatorKey is the document key of the minute indicator row.
const IndicatorKey = "M"

type tee []Surface

// Tee returns a Surface that forwards every call to each of surfaces, in
// order. Nil entries are skipped.
func Tee(surfaces ...Surface) Surface {
	out := make(tee, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (t tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}

func (t tee) SetPixel(x, y int, color uint8) {
	for _, s := range t {
		s.SetPixel(x, y, color)
	}
}

func (t tee) SetBrightness(level uint8) {
	for _, s := range t {
		s.SetBrightness(level)
	}
}
