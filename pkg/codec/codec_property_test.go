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
	"reflect"
	"testing"

	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/modes"
	"pgregory.net/rapid"
)

// ============================================================================
// Generators
// ============================================================================

func targetGen() *rapid.Generator[int] {
	return rapid.IntRange(modes.OffIndex, modes.SlotCount-1)
}

// slotGen draws a configuration with a short non-empty name so that every
// slot fits the name budget.
func slotGen(env *modes.Env) *rapid.Generator[modes.Config] {
	return rapid.Custom(func(t *rapid.T) modes.Config {
		kind := rapid.SampledFrom(modes.Kinds()).Draw(t, "kind")
		cfg := modes.HandlerFor(kind).New(env)

		if name, ok := modes.AsNamed(cfg); ok {
			*name = rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "name")
		}
		if look, ok := modes.AsColored(cfg); ok {
			look.Color = uint8(rapid.IntRange(0, colors.Count-1).Draw(t, "color"))                 //nolint:gosec // palette index
			look.Brightness = uint8(rapid.IntRange(0, int(modes.MaxBrightness)).Draw(t, "bright")) //nolint:gosec // <= 100
		}

		switch c := cfg.(type) {
		case *modes.Timer:
			c.Main = targetGen().Draw(t, "main")
			c.Rules = make([]modes.TimerRule, rapid.IntRange(0, 3).Draw(t, "rules"))
			for i := range c.Rules {
				c.Rules[i] = modes.TimerRule{
					Mode:  targetGen().Draw(t, "mode"),
					Start: uint16(rapid.IntRange(0, modes.MinutesPerDay-1).Draw(t, "start")), //nolint:gosec // < 1440
					End:   uint16(rapid.IntRange(0, modes.MinutesPerDay-1).Draw(t, "end")),   //nolint:gosec // < 1440
				}
			}
		case *modes.Interval:
			c.Steps = make([]modes.IntervalStep, rapid.IntRange(0, 4).Draw(t, "steps"))
			for i := range c.Steps {
				c.Steps[i] = modes.IntervalStep{
					Mode:    targetGen().Draw(t, "mode"),
					Seconds: uint16(rapid.IntRange(1, 65535).Draw(t, "seconds")), //nolint:gosec // <= 65535
				}
			}
		case *modes.Picture:
			c.Pixels[0][0] = uint8(rapid.IntRange(0, 1).Draw(t, "pixel")) //nolint:gosec // 0 or 1
		}
		return cfg
	})
}

// ============================================================================
// Record Round Trip
// ============================================================================

// TestPropertySlotsRoundTrip verifies Decode undoes Encode for slots that fit
// both budgets.
func TestPropertySlotsRoundTrip(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rapid.Check(t, func(t *rapid.T) {
		var slots modes.Slots
		for i := range slots {
			slots[i] = slotGen(env).Draw(t, "slot")
		}
		current := targetGen().Draw(t, "current")

		rec, report := Encode(&slots, current, env)
		if len(report.Unnamed) > 0 {
			t.Fatalf("names within budget were dropped: %v", report.Unnamed)
		}
		if len(report.Dropped) > 0 {
			t.Fatalf("payloads within the pool were dropped: %v", report.Dropped)
		}

		data, err := rec.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var back Record
		if err := back.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		got, boot := Decode(&back, env)
		if !reflect.DeepEqual(slots, got) {
			t.Fatalf("slots mismatch:\nwant %#v\ngot  %#v", slots, got)
		}

		want := current
		if current >= 0 && slots[current].Kind() == modes.KindEmpty {
			want = 0
		}
		if boot != want {
			t.Fatalf("boot slot %d, want %d", boot, want)
		}
	})
}

// TestPropertyDecodeToleratesGarbage verifies any record with a valid marker
// decodes without panicking into slots of known kinds.
func TestPropertyDecodeToleratesGarbage(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), RecordSize, RecordSize).Draw(t, "data")
		data[0] = Marker

		var rec Record
		if err := rec.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		slots, boot := Decode(&rec, env)
		for i, cfg := range slots {
			if cfg == nil {
				t.Fatalf("slot %d is nil", i)
			}
		}
		if !modes.ValidTarget(boot) {
			t.Fatalf("boot slot %d out of range", boot)
		}
	})
}
