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
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/modes"
)

// Report describes what an Encode could not store.
type Report struct {
	// Dropped lists slots whose payload did not fit the word budget.
	Dropped []int
	// Unnamed lists slots whose name did not fit the name budget.
	Unnamed   []int
	WordsUsed int
}

func bootByte(current int) uint8 {
	if current < 0 || current >= modes.SlotCount {
		return BootOff
	}
	return uint8(current) //nolint:gosec // checked above
}

// Encode packs slots and the boot slot into a record. Slots are written in
// order against a shared word cursor; a slot whose payload no longer fits is
// stored with no words and listed in the report.
func Encode(slots *modes.Slots, current int, env *modes.Env) (*Record, Report) {
	rec := &Record{Marker: Marker, Boot: bootByte(current)}
	var report Report
	var names [modes.SlotCount]string

	cursor := 0
	for i, cfg := range slots {
		if cfg == nil {
			cfg = &modes.Empty{}
		}
		h := modes.HandlerFor(cfg.Kind())
		meta := SlotMeta{Kind: uint8(cfg.Kind())}

		if look, ok := modes.AsColored(cfg); ok {
			meta.Brightness = look.Brightness
			meta.Color = look.Color
		}
		if name, ok := modes.AsNamed(cfg); ok {
			names[i] = *name
		}

		free := min(WordBudget-cursor, maxWordsPerSlot)
		if size := h.Size(cfg); size > 0 {
			n := h.ToBinary(cfg, env, rec.Words[cursor:cursor+free])
			if n == 0 {
				log.Warn().Msgf("slot %d (%s) needs %d words, %d left: not persisted",
					i, modes.Describe(cfg), size, WordBudget-cursor)
				report.Dropped = append(report.Dropped, i)
			}
			meta.Words = uint8(n) //nolint:gosec // at most maxWordsPerSlot
			cursor += n
		}
		rec.Slots[i] = meta
	}
	report.WordsUsed = cursor

	var stored [modes.SlotCount]bool
	rec.Names, stored = PackNames(names)
	for i, ok := range stored {
		if !ok {
			log.Warn().Msgf("slot %d name %q exceeds the name budget: stored empty", i, names[i])
			report.Unnamed = append(report.Unnamed, i)
		}
	}
	return rec, report
}

// Decode rebuilds the slots from a record with a valid marker and returns
// them with the slot to boot. A boot slot that is out of range or EMPTY
// falls back to slot 0.
func Decode(rec *Record, env *modes.Env) (modes.Slots, int) {
	var slots modes.Slots
	names := UnpackNames(rec.Names)

	cursor := 0
	for i, meta := range rec.Slots {
		kind := modes.KindFromTag(meta.Kind)
		cfg := modes.HandlerFor(kind).New(env)

		if name, ok := modes.AsNamed(cfg); ok && names[i] != "" {
			*name = names[i]
		}
		if look, ok := modes.AsColored(cfg); ok {
			look.Brightness = min(meta.Brightness, modes.MaxBrightness)
			look.Color = meta.Color
		}

		n := int(meta.Words)
		if cursor+n > WordBudget {
			log.Warn().Msgf("slot %d claims %d words past the pool end", i, n)
			n = 0
		}
		modes.HandlerFor(kind).FromBinary(cfg, env, rec.Words[cursor:cursor+n])
		cursor += n
		slots[i] = cfg
	}

	boot := 0
	switch {
	case rec.Boot == BootOff:
		boot = modes.OffIndex
	case int(rec.Boot) < modes.SlotCount && slots[rec.Boot].Kind() != modes.KindEmpty:
		boot = int(rec.Boot)
	default:
		log.Info().Msgf("boot slot %d unusable, starting slot 0", rec.Boot)
	}
	return slots, boot
}

// Defaults returns the factory slot layout: a word clock in slot 0, a digit
// clock in slot 1 and empty slots elsewhere, booting slot 0.
func Defaults(env *modes.Env) (modes.Slots, int) {
	var slots modes.Slots
	for i := range slots {
		slots[i] = &modes.Empty{}
	}
	slots[0] = modes.HandlerFor(modes.KindWordClock).New(env)
	slots[1] = modes.HandlerFor(modes.KindDigiClock).New(env)
	return slots, 0
}
