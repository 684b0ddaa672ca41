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
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
)

// FixedTime overrides the wall clock for every time read made through an Env.
type FixedTime struct {
	Enabled bool
	Hours   uint8
	Minutes uint8
}

// Slots is the engine-owned slot array handlers delegate into.
type Slots = [SlotCount]Config

var offConfig Config = &Off{}

// Env is handed to every handler call. It carries the rendering surface, the
// palette, the time source and the activation chain. An Env is owned by a
// single goroutine.
type Env struct {
	Surface display.Surface
	Colors  colors.Table
	clock   clockwork.Clock
	slots   *Slots
	Fixed   FixedTime
	chain   [SlotCount]int
	level   int
}

func NewEnv(surface display.Surface, table colors.Table, clock clockwork.Clock, slots *Slots) *Env {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if table == nil {
		table = colors.Default()
	}
	e := &Env{
		Surface: surface,
		Colors:  table,
		clock:   clock,
		slots:   slots,
	}
	e.Reset()
	return e
}

// Reset clears the activation chain.
func (e *Env) Reset() {
	e.level = 0
	for i := range e.chain {
		e.chain[i] = NotActive
	}
}

func (e *Env) Hours() int {
	if e.Fixed.Enabled {
		return int(e.Fixed.Hours)
	}
	return e.clock.Now().Hour()
}

func (e *Env) Minutes() int {
	if e.Fixed.Enabled {
		return int(e.Fixed.Minutes)
	}
	return e.clock.Now().Minute()
}

// DayMinutes returns the minute of the day, 0-1439.
func (e *Env) DayMinutes() int {
	if e.Fixed.Enabled {
		return int(e.Fixed.Hours)*60 + int(e.Fixed.Minutes)
	}
	now := e.clock.Now()
	return now.Hour()*60 + now.Minute()
}

// Level is the current delegation depth.
func (e *Env) Level() int {
	return e.level
}

// Chain returns the active slot indices from the root down to the rendering
// leaf.
func (e *Env) Chain() []int {
	out := make([]int, 0, SlotCount)
	for _, i := range e.chain {
		if i == NotActive {
			break
		}
		out = append(out, i)
	}
	return out
}

// Slot returns the configuration a target refers to. OffIndex and out of
// range targets resolve to the shared Off configuration.
func (e *Env) Slot(target int) Config {
	if target < 0 || target >= SlotCount || e.slots == nil {
		return offConfig
	}
	cfg := e.slots[target]
	if cfg == nil {
		return offConfig
	}
	return cfg
}

// ActivateNext makes target the active slot one level below the caller and
// runs its activation. All deeper levels are reset.
func (e *Env) ActivateNext(target int) {
	if e.level >= SlotCount {
		log.Warn().Msgf("activation refused at depth %d (target %d)", e.level, target)
		return
	}
	if !ValidTarget(target) {
		log.Warn().Msgf("activation target %d out of range, switching off", target)
		target = OffIndex
	}

	e.chain[e.level] = target
	for d := e.level + 1; d < SlotCount; d++ {
		e.chain[d] = NotActive
	}

	cfg := e.Slot(target)
	log.Debug().Msgf("activate %s at depth %d", Describe(cfg), e.level)

	e.level++
	defer func() { e.level-- }()
	HandlerFor(cfg.Kind()).OnActivate(cfg, e)
}

// LoopNext runs one loop step of the slot active one level below the caller
// and returns the delay it asks for. It returns 0 when nothing is active
// there.
func (e *Env) LoopNext(now uint64) uint32 {
	if e.level >= SlotCount {
		log.Warn().Msgf("loop refused at depth %d", e.level)
		return 0
	}
	target := e.chain[e.level]
	if target == NotActive {
		return 0
	}

	cfg := e.Slot(target)
	e.level++
	defer func() { e.level-- }()
	return HandlerFor(cfg.Kind()).OnLoop(cfg, e, now)
}
