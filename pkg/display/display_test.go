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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridSetPixelBounds(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	g.SetPixel(0, 0, 3)
	g.SetPixel(10, 10, 4)
	g.SetPixel(11, 0, 5)
	g.SetPixel(-1, 2, 5)
	g.SetPixel(2, IndicatorRow, 6)
	g.SetPixel(4, IndicatorRow, 7)

	snap := g.Snapshot()
	assert.Equal(t, uint8(3), snap.Pixels[0][0])
	assert.Equal(t, uint8(4), snap.Pixels[10][10])
	assert.Equal(t, [Indicators]uint8{0, 0, 6, 0}, snap.Indicators)
}

func TestGridClearKeepsBrightness(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	g.SetBrightness(250)
	g.SetPixel(1, 1, 2)
	g.SetPixel(0, IndicatorRow, 2)
	g.Clear()

	snap := g.Snapshot()
	assert.Equal(t, uint8(MaxBrightness), snap.Brightness)
	assert.Equal(t, Snapshot{Brightness: MaxBrightness}, snap)
}

func TestDrawNumber(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	DrawNumber(g, 2, 0, 7, 1)

	snap := g.Snapshot()
	// leading zero: full top row of the "0" glyph
	assert.Equal(t, []uint8{1, 1, 1}, snap.Pixels[0][2:5])
	// "7": top row lit, then a single centre column
	assert.Equal(t, []uint8{1, 1, 1}, snap.Pixels[0][6:9])
	assert.Equal(t, []uint8{0, 1, 0}, snap.Pixels[4][6:9])
}

func TestRowKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", RowKey(0))
	assert.Equal(t, "a", RowKey(10))
	assert.Empty(t, RowKey(16))
}

func TestTee(t *testing.T) {
	t.Parallel()
	a, b := NewGrid(), NewGrid()
	s := Tee(a, nil, b)

	s.SetPixel(1, 2, 3)
	s.SetBrightness(40)
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, uint8(3), b.Snapshot().Pixels[2][1])

	s.Clear()
	assert.Equal(t, uint8(40), a.Snapshot().Brightness)
	assert.Zero(t, a.Snapshot().Pixels[2][1])
}
