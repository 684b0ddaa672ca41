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
	"github.com/rs/zerolog/log"
)

const (
	MaxIntervals = 10

	intervalCountBits = 4
	intervalRuleOff   = 4
	intervalsPerWord  = 4
	secondsBits       = 16
)

// IntervalStep shows Mode for Seconds before the next step takes over.
type IntervalStep struct {
	Mode    int
	Seconds uint16
}

// Interval cycles through its steps in order, wrapping around after the
// last one.
type Interval struct {
	Steps []IntervalStep
	Base

	current  int
	deadline uint64
	delay    uint32
	lastStep uint64
	armed    bool
	due      bool
}

func (*Interval) Kind() Kind { return KindInterval }

// Current is the index of the running step.
func (iv *Interval) Current() int {
	return iv.current
}

func (iv *Interval) target() int {
	if iv.current >= len(iv.Steps) {
		iv.current = 0
	}
	if len(iv.Steps) == 0 {
		return OffIndex
	}
	return iv.Steps[iv.current].Mode
}

func (iv *Interval) duration() uint64 {
	if iv.current >= len(iv.Steps) {
		iv.current = 0
	}
	if len(iv.Steps) == 0 {
		return uint64(metaPoll)
	}
	return uint64(iv.Steps[iv.current].Seconds) * 1000
}

func (iv *Interval) enter(env *Env) {
	iv.due = true
	iv.delay = 0
	env.ActivateNext(iv.target())
}

type intervalHandler struct{}

func (intervalHandler) kind() Kind { return KindInterval }

func (intervalHandler) init(*Env) *Interval {
	return &Interval{
		Base:  newBase(KindInterval),
		Steps: []IntervalStep{{Mode: OffIndex, Seconds: 60}},
	}
}

func (intervalHandler) size(cfg *Interval) int {
	return 1 + ceilDiv(len(cfg.Steps), intervalsPerWord)
}

func (intervalHandler) toBinary(cfg *Interval, _ *Env, words []uint64) int {
	n := 1 + ceilDiv(len(cfg.Steps), intervalsPerWord)
	for i := range words[:n] {
		words[i] = 0
	}
	setBits(&words[0], 0, intervalCountBits, uint64(len(cfg.Steps))) //nolint:gosec // at most MaxIntervals
	for i, s := range cfg.Steps {
		setBits(&words[0], uint(targetBits*i+intervalRuleOff), targetBits, encodeTarget(s.Mode)) //nolint:gosec // i < 10
		off := uint(secondsBits * (i % intervalsPerWord)) //nolint:gosec // i < 10
		setBits(&words[i/intervalsPerWord+1], off, secondsBits, uint64(s.Seconds))
	}
	return n
}

func (intervalHandler) fromBinary(cfg *Interval, _ *Env, words []uint64) {
	count := int(getBits(words[0], 0, intervalCountBits)) //nolint:gosec // 4 bits
	if count > MaxIntervals || len(words) != 1+ceilDiv(count, intervalsPerWord) {
		log.Warn().Msgf("interval: %d steps do not match %d words", count, len(words))
		cfg.Steps = nil
		return
	}
	cfg.current = 0
	cfg.Steps = make([]IntervalStep, count)
	for i := range cfg.Steps {
		w := words[i/intervalsPerWord+1]
		seconds := getBits(w, uint(secondsBits*(i%intervalsPerWord)), secondsBits) //nolint:gosec // i < 10
		cfg.Steps[i] = IntervalStep{
			Mode:    decodeTarget(getBits(words[0], uint(targetBits*i+intervalRuleOff), targetBits)), //nolint:gosec // i < 10
			Seconds: uint16(seconds), //nolint:gosec // 16 bits
		}
	}
}

type intervalStepDoc struct {
	Mode    *int `json:"mode" validate:"required,slotref"`
	Seconds int  `json:"seconds" validate:"min=1,max=65535"`
}

type intervalStepsDoc struct {
	Steps []intervalStepDoc `validate:"max=10,dive"`
}

func (intervalHandler) toDocument(cfg *Interval, _ *Env, data, schema Document) {
	steps := make([]Document, 0, len(cfg.Steps))
	for _, s := range cfg.Steps {
		steps = append(steps, Document{"mode": s.Mode, "seconds": s.Seconds})
	}
	data["intervals"] = steps
	schema["intervals"] = schemaList(MaxIntervals, Document{
		"mode":    schemaMode(),
		"seconds": schemaInt(1, 65535),
	})
}

func (intervalHandler) fromDocument(cfg *Interval, _ *Env, doc Fields) error {
	var list intervalStepsDoc
	ok, err := doc.Decode("intervals", &list.Steps)
	if err != nil || !ok {
		return err
	}
	if err := validateDoc(&list); err != nil {
		return err
	}
	cfg.Steps = make([]IntervalStep, 0, len(list.Steps))
	for _, s := range list.Steps {
		cfg.Steps = append(cfg.Steps, IntervalStep{
			Mode:    *s.Mode,
			Seconds: uint16(s.Seconds), //nolint:gosec // validated
		})
	}
	cfg.current = 0
	return nil
}

func (intervalHandler) onActivate(cfg *Interval, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(cfg.Brightness)
	cfg.current = 0
	cfg.armed = false
	cfg.enter(env)
}

func (intervalHandler) onLoop(cfg *Interval, env *Env, now uint64) uint32 {
	switch {
	case !cfg.armed:
		cfg.armed = true
		cfg.deadline = now + cfg.duration()
	case now >= cfg.deadline && len(cfg.Steps) > 0:
		cfg.current = (cfg.current + 1) % len(cfg.Steps)
		cfg.deadline = now + cfg.duration()
		log.Debug().Msgf("interval %q advances to step %d", cfg.Name, cfg.current)
		cfg.enter(env)
	}

	if cfg.due || (cfg.delay > 0 && now-cfg.lastStep >= uint64(cfg.delay)) {
		cfg.due = false
		cfg.lastStep = now
		cfg.delay = env.LoopNext(now)
	}

	next := metaPoll
	if cfg.delay > 0 && cfg.delay < next {
		next = cfg.delay
	}
	if remaining := cfg.deadline - now; cfg.deadline > now && remaining < uint64(next) {
		next = uint32(remaining) //nolint:gosec // below metaPoll
	}
	return next
}
