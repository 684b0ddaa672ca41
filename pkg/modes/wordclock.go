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
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/timedef"
)

// WordClock spells the time on the letter grid. Choices selects the phrase
// variant used for each five minute segment.
type WordClock struct {
	Choices [timedef.Segments]uint8
	Base
}

func (*WordClock) Kind() Kind { return KindWordClock }

const choiceBits = 2

type wordClockHandler struct{}

func (wordClockHandler) kind() Kind { return KindWordClock }

func (wordClockHandler) init(*Env) *WordClock {
	return &WordClock{Base: newBase(KindWordClock)}
}

func (wordClockHandler) size(*WordClock) int { return 1 }

func (wordClockHandler) toBinary(cfg *WordClock, _ *Env, words []uint64) int {
	var w uint64
	for i, c := range cfg.Choices {
		setBits(&w, uint(i*choiceBits), choiceBits, uint64(c)) //nolint:gosec // i < 12
	}
	words[0] = w
	return 1
}

func (wordClockHandler) fromBinary(cfg *WordClock, _ *Env, words []uint64) {
	cfg.Choices = [timedef.Segments]uint8{}
	if len(words) != 1 {
		log.Warn().Msgf("wordclock: unexpected word count %d", len(words))
		return
	}
	for i := range cfg.Choices {
		cfg.Choices[i] = uint8(getBits(words[0], uint(i*choiceBits), choiceBits)) //nolint:gosec // 2 bits
	}
}

func (wordClockHandler) toDocument(cfg *WordClock, _ *Env, data, schema Document) {
	choices := make([]int, len(cfg.Choices))
	for i, c := range cfg.Choices {
		choices[i] = int(c)
	}
	data["config"] = choices
	schema["config"] = Document{"type": "choices", "values": timedef.Table()}
}

func (wordClockHandler) fromDocument(cfg *WordClock, _ *Env, doc Fields) error {
	var choices []int
	ok, err := doc.Decode("config", &choices)
	if err != nil || !ok {
		return err
	}
	if len(choices) > timedef.Segments {
		return fmt.Errorf("%w: %d phrase choices", ErrInvalidField, len(choices))
	}
	next := cfg.Choices
	for i, c := range choices {
		if c < 0 || c >= len(timedef.Variants(i)) {
			return fmt.Errorf("%w: phrase choice %d for segment %d", ErrInvalidField, c, i)
		}
		next[i] = uint8(c) //nolint:gosec // checked above
	}
	cfg.Choices = next
	return nil
}

func (wordClockHandler) onActivate(cfg *WordClock, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(cfg.Brightness)
}

func (wordClockHandler) onLoop(cfg *WordClock, env *Env, _ uint64) uint32 {
	hours, minutes := env.Hours(), env.Minutes()
	sentence := timedef.Sentence(cfg.Choices, hours, minutes)

	env.Surface.Clear()
	offsets, err := timedef.Locate(sentence)
	if err != nil {
		log.Warn().Err(err).Msgf("wordclock: cannot show %q", sentence)
	}
	for _, o := range offsets {
		env.Surface.SetPixel(o%display.Width, o/display.Width, cfg.Color)
	}
	for i := range minutes % 5 {
		env.Surface.SetPixel(i, display.IndicatorRow, cfg.Color)
	}
	return clockRefresh
}
