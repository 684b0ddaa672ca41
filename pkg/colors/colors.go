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

// Package colors holds the fixed LED palette. Modes only ever store and
// transmit palette indices; RGB values are resolved at the edges.
package colors

import (
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"
)

// minSuggestSimilarity is the Jaro-Winkler score a name needs to be offered
// as a correction.
const minSuggestSimilarity = 0.8

type Color struct {
	Name string `json:"name"`
	R    uint8  `json:"r"`
	G    uint8  `json:"g"`
	B    uint8  `json:"b"`
}

// RGB returns the color packed as 0xRRGGBB.
func (c Color) RGB() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

const (
	Off   uint8 = 0
	White uint8 = 8
)

var palette = [...]Color{
	{Name: "off", R: 0, G: 0, B: 0},
	{Name: "red", R: 255, G: 0, B: 0},
	{Name: "rose", R: 255, G: 0, B: 128},
	{Name: "magenta", R: 255, G: 0, B: 255},
	{Name: "violet", R: 128, G: 0, B: 255},
	{Name: "purple", R: 128, G: 0, B: 128},
	{Name: "blue", R: 0, G: 0, B: 255},
	{Name: "skyblue", R: 0, G: 128, B: 255},
	{Name: "white", R: 255, G: 255, B: 255},
	{Name: "lime", R: 0, G: 255, B: 0},
	{Name: "springgreen", R: 0, G: 255, B: 128},
	{Name: "green", R: 0, G: 128, B: 0},
	{Name: "lawngreen", R: 128, G: 255, B: 0},
	{Name: "yellow", R: 200, G: 200, B: 0},
	{Name: "orange", R: 255, G: 128, B: 0},
}

// Count is the number of palette entries. Every index fits in 4 bits.
const Count = len(palette)

// Table is the palette lookup used by mode handlers.
type Table interface {
	Color(index uint8) Color
	Index(name string) (uint8, bool)
	Name(index uint8) string
	All() []Color
}

type defaultTable struct{}

// Default returns the built-in palette.
func Default() Table {
	return defaultTable{}
}

func (defaultTable) Color(index uint8) Color {
	if int(index) >= Count {
		return palette[Off]
	}
	return palette[index]
}

func (defaultTable) Index(name string) (uint8, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, c := range palette {
		if c.Name == name {
			return uint8(i), true //nolint:gosec // palette is smaller than 256
		}
	}
	return 0, false
}

func (t defaultTable) Name(index uint8) string {
	return t.Color(index).Name
}

func (defaultTable) All() []Color {
	out := make([]Color, Count)
	copy(out, palette[:])
	return out
}

// Key is the single hex digit a palette index is written as in documents
// and live snapshots.
func Key(index uint8) string {
	return strconv.FormatUint(uint64(index), 16)
}

// Map returns the palette keyed by Key, the shape served to web clients.
func Map(t Table) map[string]Color {
	all := t.All()
	m := make(map[string]Color, len(all))
	for i, c := range all {
		m[Key(uint8(i))] = c //nolint:gosec // palette is smaller than 256
	}
	return m
}

// Suggest returns the palette name closest to an unknown name, or "" when
// nothing is close enough.
func Suggest(t Table, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	best := ""
	var bestScore float32
	for _, c := range t.All() {
		score := edlib.JaroWinklerSimilarity(name, c.Name)
		if score > bestScore {
			best, bestScore = c.Name, score
		}
	}
	if bestScore < minSuggestSimilarity {
		return ""
	}
	return best
}
