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

// Package engine owns the mode slots. It activates and loops the root slot,
// loads and saves the slots through a durable store and translates the
// configuration documents of the HTTP API.
//
// An Engine is not safe for concurrent use. The service goroutine owns it and
// every other caller goes through that goroutine.
package engine

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/codec"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/modes"
	"github.com/wordclock/wordclock-core/pkg/storage"
)

// DefaultMaxLoopDelay caps the delay between two loop steps of the root.
const DefaultMaxLoopDelay = time.Second

type Options struct {
	// Output receives every drawing call besides the live grid, usually
	// the LED driver. Optional.
	Output display.Surface
	Clock  clockwork.Clock
	Colors colors.Table
	// MaxLoopDelay caps the delay a root slot may ask for. Zero uses
	// DefaultMaxLoopDelay.
	MaxLoopDelay time.Duration
}

type Engine struct {
	store    storage.Store
	grid     *display.Grid
	env      *modes.Env
	slots    modes.Slots
	current  int
	lastStep uint64
	delay    uint32
	maxDelay uint32
	pending  bool
}

// New returns an engine with factory slots. Call Load to read the stored
// slots and start the root.
func New(store storage.Store, opts Options) *Engine {
	maxDelay := opts.MaxLoopDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxLoopDelay
	}
	e := &Engine{
		store:    store,
		grid:     display.NewGrid(),
		maxDelay: uint32(maxDelay.Milliseconds()), //nolint:gosec // configured in seconds
	}
	e.env = modes.NewEnv(display.Tee(e.grid, opts.Output), opts.Colors, opts.Clock, &e.slots)
	e.slots, e.current = codec.Defaults(e.env)
	return e
}

func (e *Engine) Env() *modes.Env {
	return e.env
}

// Current is the root slot, or modes.OffIndex.
func (e *Engine) Current() int {
	return e.current
}

// Slot returns the configuration stored at index i, nil when out of range.
func (e *Engine) Slot(i int) modes.Config {
	if i < 0 || i >= modes.SlotCount {
		return nil
	}
	return e.slots[i]
}

func (e *Engine) Snapshot() display.Snapshot {
	return e.grid.Snapshot()
}

// Describe names the root slot for logging.
func (e *Engine) Describe() string {
	return modes.Describe(e.env.Slot(e.current))
}

// Load replaces the slots with the stored ones and activates the stored root.
// A record without the expected marker is treated as a first boot: factory
// slots are seeded and written back. A store that cannot be read leaves the
// factory slots running and returns the error.
func (e *Engine) Load() error {
	defer e.activateRoot()

	data, err := storage.Load(e.store, codec.RecordSize)
	if err != nil {
		e.slots, e.current = codec.Defaults(e.env)
		return fmt.Errorf("failed to load slots: %w", err)
	}

	var rec codec.Record
	if err := rec.UnmarshalBinary(data); err != nil {
		e.slots, e.current = codec.Defaults(e.env)
		return fmt.Errorf("failed to decode slots: %w", err)
	}

	if rec.Marker != codec.Marker {
		log.Info().Msgf("no valid record (marker %#x), seeding defaults", rec.Marker)
		e.slots, e.current = codec.Defaults(e.env)
		if err := e.Save(); err != nil {
			log.Error().Err(err).Msg("failed to persist default slots")
		}
		return nil
	}

	e.slots, e.current = codec.Decode(&rec, e.env)
	log.Info().Msgf("loaded slots, root is %d", e.current)
	return nil
}

// Save writes every slot and the root to the store. Slots that do not fit are
// logged and skipped; only store failures are returned.
func (e *Engine) Save() error {
	rec, report := codec.Encode(&e.slots, e.current, e.env)
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}
	if err := storage.Save(e.store, data); err != nil {
		return fmt.Errorf("failed to save slots: %w", err)
	}
	log.Info().
		Int("words", report.WordsUsed).
		Ints("dropped", report.Dropped).
		Ints("unnamed", report.Unnamed).
		Msg("saved slots")
	return nil
}

// Reload saves the slots and reads them straight back, so the running state
// is what the store actually holds.
func (e *Engine) Reload() error {
	if err := e.Save(); err != nil {
		log.Error().Err(err).Msg("flash failed, reloading stored state")
	}
	return e.Load()
}

// FactoryReset drops every slot and the time override and persists the
// factory layout.
func (e *Engine) FactoryReset() error {
	e.slots, e.current = codec.Defaults(e.env)
	e.env.Fixed = modes.FixedTime{}
	e.activateRoot()
	return e.Save()
}

// SetCurrent selects the root slot and restarts the chain. Indices other than
// a slot or modes.OffIndex are ignored and reported as false.
func (e *Engine) SetCurrent(i int) bool {
	if !modes.ValidTarget(i) {
		log.Warn().Msgf("ignoring root slot %d", i)
		return false
	}
	e.current = i
	e.activateRoot()
	return true
}

func (e *Engine) activateRoot() {
	e.env.Reset()
	log.Info().Msgf("activate root %d: %s", e.current, e.Describe())
	e.env.ActivateNext(e.current)
	e.pending = true
	e.delay = 0
}

// Tick runs a loop step of the root when one is due and reports whether it
// did. A step is due right after activation and then whenever more than the
// requested delay has passed since the last step. A root that asked for no
// delay is not looped again until the next activation.
func (e *Engine) Tick(now uint64) bool {
	switch {
	case e.pending:
		e.pending = false
	case e.delay == 0:
		return false
	case now-e.lastStep <= uint64(e.delay):
		return false
	}

	e.delay = min(e.env.LoopNext(now), e.maxDelay)
	e.lastStep = now
	return true
}

// Delay is the delay the root asked for at its last step, capped.
func (e *Engine) Delay() uint32 {
	return e.delay
}
