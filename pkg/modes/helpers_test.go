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

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
)

type testEnv struct {
	env   *Env
	grid  *display.Grid
	clock *clockwork.FakeClock
	slots *Slots
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	slots := &Slots{}
	for i := range slots {
		slots[i] = &Empty{}
	}
	grid := display.NewGrid()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local))
	return &testEnv{
		env:   NewEnv(grid, colors.Default(), clock, slots),
		grid:  grid,
		clock: clock,
		slots: slots,
	}
}

func (te *testEnv) fixTime(hours, minutes uint8) {
	te.env.Fixed = FixedTime{Enabled: true, Hours: hours, Minutes: minutes}
}

func fields(t *testing.T, doc string) Fields {
	t.Helper()
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(doc), &f))
	return f
}

// roundTrip packs cfg and unpacks it into a fresh configuration of the same
// kind that shares its name and appearance.
func roundTrip(env *Env, cfg Config) (Config, int) {
	h := HandlerFor(cfg.Kind())
	words := make([]uint64, h.Size(cfg))
	n := h.ToBinary(cfg, env, words)

	got := h.New(env)
	if name, ok := AsNamed(cfg); ok {
		to, _ := AsNamed(got)
		*to = *name
	}
	if look, ok := AsColored(cfg); ok {
		to, _ := AsColored(got)
		*to = *look
	}
	h.FromBinary(got, env, words[:n])
	return got, n
}
