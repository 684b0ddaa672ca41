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
)

// Handler is the behavior of one mode kind. Handlers hold no state of their
// own; everything they need lives in the Config or the Env.
type Handler interface {
	Kind() Kind
	// New returns a configuration populated with the kind's defaults.
	New(env *Env) Config
	// Size is the number of words ToBinary needs for cfg.
	Size(cfg Config) int
	// ToBinary packs cfg into words and returns the number of words used,
	// or 0 when words is too short.
	ToBinary(cfg Config, env *Env, words []uint64) int
	// FromBinary is the inverse of ToBinary. len(words) is the used count
	// that was recorded; an empty slice leaves the defaults in place.
	FromBinary(cfg Config, env *Env, words []uint64)
	ToDocument(cfg Config, env *Env, data, schema Document)
	// FromDocument merges the fields present in doc into cfg.
	FromDocument(cfg Config, env *Env, doc Fields) error
	OnActivate(cfg Config, env *Env)
	// OnLoop runs one step and returns the delay in milliseconds before the
	// next one. 0 means no further steps are needed.
	OnLoop(cfg Config, env *Env, now uint64) uint32
}

type kindHandler[T Config] interface {
	kind() Kind
	init(env *Env) T
	size(cfg T) int
	toBinary(cfg T, env *Env, words []uint64) int
	fromBinary(cfg T, env *Env, words []uint64)
	toDocument(cfg T, env *Env, data, schema Document)
	fromDocument(cfg T, env *Env, doc Fields) error
	onActivate(cfg T, env *Env)
	onLoop(cfg T, env *Env, now uint64) uint32
}

// bound adapts a kindHandler to the untyped Handler interface. A Config of
// the wrong variant is logged and treated as a no-op.
type bound[T Config] struct {
	h kindHandler[T]
}

func (b bound[T]) cast(cfg Config) (T, bool) {
	c, ok := cfg.(T)
	if !ok {
		log.Error().Msgf("%s handler called with %T", b.h.kind(), cfg)
	}
	return c, ok
}

func (b bound[T]) Kind() Kind { return b.h.kind() }

func (b bound[T]) New(env *Env) Config { return b.h.init(env) }

func (b bound[T]) Size(cfg Config) int {
	c, ok := b.cast(cfg)
	if !ok {
		return 0
	}
	return b.h.size(c)
}

func (b bound[T]) ToBinary(cfg Config, env *Env, words []uint64) int {
	c, ok := b.cast(cfg)
	if !ok || len(words) < b.h.size(c) {
		return 0
	}
	return b.h.toBinary(c, env, words)
}

func (b bound[T]) FromBinary(cfg Config, env *Env, words []uint64) {
	if c, ok := b.cast(cfg); ok && len(words) > 0 {
		b.h.fromBinary(c, env, words)
	}
}

func (b bound[T]) ToDocument(cfg Config, env *Env, data, schema Document) {
	if c, ok := b.cast(cfg); ok {
		b.h.toDocument(c, env, data, schema)
	}
}

func (b bound[T]) FromDocument(cfg Config, env *Env, doc Fields) error {
	c, ok := b.cast(cfg)
	if !ok {
		return fmt.Errorf("%w: %T", ErrWrongKind, cfg)
	}
	return b.h.fromDocument(c, env, doc)
}

func (b bound[T]) OnActivate(cfg Config, env *Env) {
	if c, ok := b.cast(cfg); ok {
		b.h.onActivate(c, env)
	}
}

func (b bound[T]) OnLoop(cfg Config, env *Env, now uint64) uint32 {
	c, ok := b.cast(cfg)
	if !ok {
		return 0
	}
	return b.h.onLoop(c, env, now)
}

var registry = [kindCount]Handler{
	KindEmpty:     bound[*Empty]{emptyHandler{}},
	KindWordClock: bound[*WordClock]{wordClockHandler{}},
	KindDigiClock: bound[*DigiClock]{digiClockHandler{}},
	KindPicture:   bound[*Picture]{pictureHandler{}},
	KindTimer:     bound[*Timer]{timerHandler{}},
	KindInterval:  bound[*Interval]{intervalHandler{}},
	KindOff:       bound[*Off]{offHandler{}},
}

// HandlerFor returns the handler registered for k. Unknown kinds get the
// EMPTY handler.
func HandlerFor(k Kind) Handler {
	if k >= kindCount {
		return registry[KindEmpty]
	}
	return registry[k]
}
