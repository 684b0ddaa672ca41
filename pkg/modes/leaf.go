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

type emptyHandler struct{}

func (emptyHandler) kind() Kind { return KindEmpty }

func (emptyHandler) init(*Env) *Empty { return &Empty{} }

func (emptyHandler) size(*Empty) int { return 0 }

func (emptyHandler) toBinary(*Empty, *Env, []uint64) int { return 0 }

func (emptyHandler) fromBinary(*Empty, *Env, []uint64) {}

func (emptyHandler) toDocument(*Empty, *Env, Document, Document) {}

func (emptyHandler) fromDocument(*Empty, *Env, Fields) error { return nil }

func (emptyHandler) onActivate(_ *Empty, env *Env) {
	env.Surface.Clear()
}

func (emptyHandler) onLoop(*Empty, *Env, uint64) uint32 { return 0 }

type offHandler struct{}

func (offHandler) kind() Kind { return KindOff }

func (offHandler) init(*Env) *Off { return &Off{} }

func (offHandler) size(*Off) int { return 0 }

func (offHandler) toBinary(*Off, *Env, []uint64) int { return 0 }

func (offHandler) fromBinary(*Off, *Env, []uint64) {}

func (offHandler) toDocument(*Off, *Env, Document, Document) {}

func (offHandler) fromDocument(*Off, *Env, Fields) error { return nil }

func (offHandler) onActivate(_ *Off, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(0)
}

func (offHandler) onLoop(*Off, *Env, uint64) uint32 { return 0 }
