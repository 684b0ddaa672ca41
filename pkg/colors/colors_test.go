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

package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteFitsNibble(t *testing.T) {
	t.Parallel()
	assert.LessOrEqual(t, Count, 16, "palette indices are persisted in 4 bits")
}

func TestIndexLookup(t *testing.T) {
	t.Parallel()

	tbl := Default()

	tests := []struct {
		name  string
		input string
		want  uint8
		found bool
	}{
		{name: "exact", input: "red", want: 1, found: true},
		{name: "upper case", input: "WHITE", want: White, found: true},
		{name: "padded", input: "  orange ", want: 14, found: true},
		{name: "off", input: "off", want: Off, found: true},
		{name: "unknown", input: "ultraviolet", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tbl.Index(tt.input)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestColorOutOfRangeIsOff(t *testing.T) {
	t.Parallel()

	tbl := Default()
	assert.Equal(t, "off", tbl.Name(200))
	assert.Equal(t, uint32(0xFFFFFF), tbl.Color(White).RGB())
}

func TestMapKeys(t *testing.T) {
	t.Parallel()

	m := Map(Default())
	require.Len(t, m, Count)
	assert.Equal(t, "skyblue", m["7"].Name)
	assert.Equal(t, "orange", m["e"].Name)
	assert.Equal(t, "a", Key(10))
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tbl := Default()
	assert.Equal(t, "purple", Suggest(tbl, "Purpel "))
	assert.Equal(t, "blue", Suggest(tbl, "blu"))
	assert.Equal(t, "white", Suggest(tbl, "whte"))
	assert.Empty(t, Suggest(tbl, "xyz"))
	assert.Empty(t, Suggest(tbl, ""))
}
