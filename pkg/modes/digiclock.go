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

import "github.com/wordclock/wordclock-core/pkg/display"

// DigiClock shows hours and minutes as two rows of digits.
type DigiClock struct {
	Base
}

func (*DigiClock) Kind() Kind { return KindDigiClock }

const (
	// clockRefresh is the loop delay of both clock faces.
	clockRefresh uint32 = 1000
	digitsLeft          = (display.Width - 2*display.GlyphWidth - 1) / 2
)

type digiClockHandler struct{}

func (digiClockHandler) kind() Kind { return KindDigiClock }

func (digiClockHandler) init(*Env) *DigiClock {
	return &DigiClock{Base: newBase(KindDigiClock)}
}

func (digiClockHandler) size(*DigiClock) int { return 0 }

func (digiClockHandler) toBinary(*DigiClock, *Env, []uint64) int { return 0 }

func (digiClockHandler) fromBinary(*DigiClock, *Env, []uint64) {}

func (digiClockHandler) toDocument(*DigiClock, *Env, Document, Document) {}

func (digiClockHandler) fromDocument(*DigiClock, *Env, Fields) error { return nil }

func (digiClockHandler) onActivate(cfg *DigiClock, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(cfg.Brightness)
}

func (digiClockHandler) onLoop(cfg *DigiClock, env *Env, _ uint64) uint32 {
	env.Surface.Clear()
	display.DrawNumber(env.Surface, digitsLeft, 0, env.Hours(), cfg.Color)
	display.DrawNumber(env.Surface, digitsLeft, display.GlyphHeight+1, env.Minutes(), cfg.Color)
	return clockRefresh
}
