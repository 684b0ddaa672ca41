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

// Package modes implements the display modes of the clock: the tagged union
// of mode configurations, one stateless handler per kind, and the activation
// environment meta-modes use to delegate to other slots.
package modes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wordclock/wordclock-core/pkg/colors"
)

const (
	// SlotCount is the number of addressable mode slots. It also bounds the
	// activation chain depth.
	SlotCount = 16
	// OffIndex is the pseudo slot meaning "device outputs nothing".
	OffIndex = -1
	// NotActive marks an unused activation chain level. It is never a valid
	// target.
	NotActive = -2

	DefaultBrightness uint8 = 50
	DefaultColor            = colors.White
	MaxBrightness     uint8 = 100
)

// Kind is the persisted 4-bit tag of a mode configuration.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindWordClock
	KindDigiClock
	KindPicture
	KindTimer
	KindInterval
	KindOff
	kindCount
)

var kindLabels = [kindCount]string{
	KindEmpty:     "EMPTY",
	KindWordClock: "WORDCLOCK",
	KindDigiClock: "DIGICLOCK",
	KindPicture:   "PICTURE",
	KindTimer:     "TIMER",
	KindInterval:  "INTERVAL",
	KindOff:       "OFF",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindLabels[KindEmpty]
	}
	return kindLabels[k]
}

// KindFromTag maps a persisted tag to a kind. Unknown tags decode as EMPTY.
func KindFromTag(tag uint8) Kind {
	if Kind(tag) >= kindCount {
		return KindEmpty
	}
	return Kind(tag)
}

// ParseKind looks a kind up by its type label, ignoring case.
func ParseKind(label string) (Kind, bool) {
	label = strings.TrimSpace(label)
	for i, l := range kindLabels {
		if strings.EqualFold(l, label) {
			return Kind(i), true
		}
	}
	return KindEmpty, false
}

// Kinds returns every kind in tag order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := range kindCount {
		out = append(out, k)
	}
	return out
}

// Config is one variant of the mode union. Exactly one Config occupies each
// slot.
type Config interface {
	Kind() Kind
}

// Appearance is the color capability: a palette index and a brightness.
type Appearance struct {
	Color      uint8
	Brightness uint8
}

// Base holds the identity shared by every addressable kind.
type Base struct {
	Name string
	Appearance
}

func newBase(k Kind) Base {
	return Base{
		Name: k.String(),
		Appearance: Appearance{
			Color:      DefaultColor,
			Brightness: DefaultBrightness,
		},
	}
}

func (b *Base) NameRef() *string { return &b.Name }

func (b *Base) AppearanceRef() *Appearance { return &b.Appearance }

type named interface {
	NameRef() *string
}

type colored interface {
	AppearanceRef() *Appearance
}

// AsNamed returns the name of cfg, if its kind carries one.
func AsNamed(cfg Config) (*string, bool) {
	n, ok := cfg.(named)
	if !ok {
		return nil, false
	}
	return n.NameRef(), true
}

// AsColored returns the color and brightness of cfg, if its kind carries them.
func AsColored(cfg Config) (*Appearance, bool) {
	c, ok := cfg.(colored)
	if !ok {
		return nil, false
	}
	return c.AppearanceRef(), true
}

// Retype builds a fresh configuration of kind k, carrying the name and
// appearance of old over when both kinds have them.
func Retype(old Config, k Kind, env *Env) Config {
	cfg := HandlerFor(k).New(env)
	if old == nil {
		return cfg
	}
	if from, ok := AsNamed(old); ok {
		if to, ok := AsNamed(cfg); ok {
			*to = *from
		}
	}
	if from, ok := AsColored(old); ok {
		if to, ok := AsColored(cfg); ok {
			*to = *from
		}
	}
	return cfg
}

// Clone returns a copy of cfg that shares no memory with it.
func Clone(cfg Config) Config {
	switch c := cfg.(type) {
	case *WordClock:
		cp := *c
		return &cp
	case *DigiClock:
		cp := *c
		return &cp
	case *Picture:
		cp := *c
		return &cp
	case *Timer:
		cp := *c
		cp.Rules = slices.Clone(c.Rules)
		return &cp
	case *Interval:
		cp := *c
		cp.Steps = slices.Clone(c.Steps)
		return &cp
	case *Off:
		return &Off{}
	case *Empty:
		return &Empty{}
	}
	return cfg
}

// Describe returns "name (TYPE)" for logging.
func Describe(cfg Config) string {
	if cfg == nil {
		return kindLabels[KindEmpty]
	}
	if n, ok := AsNamed(cfg); ok {
		return fmt.Sprintf("%s (%s)", *n, cfg.Kind())
	}
	return cfg.Kind().String()
}

// Empty is an unused slot.
type Empty struct{}

func (*Empty) Kind() Kind { return KindEmpty }

// Off turns the display dark.
type Off struct{}

func (*Off) Kind() Kind { return KindOff }

// ValidTarget reports whether i may be stored as a delegation target.
func ValidTarget(i int) bool {
	return i == OffIndex || (i >= 0 && i < SlotCount)
}
