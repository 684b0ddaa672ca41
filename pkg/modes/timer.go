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

const (
	MaxTimers = 10
	// MinutesPerDay bounds timer rule minutes.
	MinutesPerDay = 24 * 60
	// metaPoll is the longest delay a meta-mode asks for, so it notices
	// schedule changes.
	metaPoll uint32 = 1000
)

// TimerRule selects Mode while the minute of day lies within Start and End,
// both inclusive. A rule with Start after End wraps over midnight.
type TimerRule struct {
	Mode  int
	Start uint16
	End   uint16
}

func (r TimerRule) Covers(minute int) bool {
	start, end := int(r.Start), int(r.End)
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

// Timer delegates to the slot of the first rule covering the current minute
// of day, or to Main when no rule does.
type Timer struct {
	Rules []TimerRule
	Base
	Main int

	current   int
	delay     uint32
	lastStep  uint64
	due       bool
	activated bool
}

func (*Timer) Kind() Kind { return KindTimer }

// Target returns the slot the timer selects at minute.
func (t *Timer) Target(minute int) int {
	for _, r := range t.Rules {
		if r.Covers(minute) {
			return r.Mode
		}
	}
	return t.Main
}

// Current is the slot the timer delegated to last.
func (t *Timer) Current() int {
	return t.current
}

func (t *Timer) switchTo(env *Env, target int) {
	t.current = target
	t.activated = true
	t.due = true
	t.delay = 0
	env.ActivateNext(target)
}

const (
	timerMainBits  = 5
	timerCountOff  = 5
	timerCountBits = 4
	timerRuleOff   = 10
	targetBits     = 5
	minuteBits     = 16
)

type timerHandler struct{}

func (timerHandler) kind() Kind { return KindTimer }

func (timerHandler) init(*Env) *Timer {
	return &Timer{
		Base:  newBase(KindTimer),
		Main:  OffIndex,
		Rules: []TimerRule{{Mode: OffIndex, Start: 0, End: MinutesPerDay - 1}},
	}
}

func (timerHandler) size(cfg *Timer) int {
	return 1 + ceilDiv(len(cfg.Rules), 2)
}

func (timerHandler) toBinary(cfg *Timer, _ *Env, words []uint64) int {
	n := 1 + ceilDiv(len(cfg.Rules), 2)
	for i := range words[:n] {
		words[i] = 0
	}
	setBits(&words[0], 0, timerMainBits, encodeTarget(cfg.Main))
	setBits(&words[0], timerCountOff, timerCountBits, uint64(len(cfg.Rules))) //nolint:gosec // at most MaxTimers
	for i, r := range cfg.Rules {
		setBits(&words[0], uint(targetBits*i+timerRuleOff), targetBits, encodeTarget(r.Mode)) //nolint:gosec // i < 10
		w := &words[i/2+1]
		off := uint(32 * (i % 2)) //nolint:gosec // 0 or 32
		setBits(w, off, minuteBits, uint64(r.Start))
		setBits(w, off+minuteBits, minuteBits, uint64(r.End))
	}
	return n
}

func (timerHandler) fromBinary(cfg *Timer, _ *Env, words []uint64) {
	count := int(getBits(words[0], timerCountOff, timerCountBits)) //nolint:gosec // 4 bits
	if count > MaxTimers || len(words) != 1+ceilDiv(count, 2) {
		log.Warn().Msgf("timer: %d rules do not match %d words", count, len(words))
		cfg.Main = OffIndex
		cfg.Rules = nil
		return
	}
	cfg.Main = decodeTarget(getBits(words[0], 0, timerMainBits))
	cfg.Rules = make([]TimerRule, count)
	for i := range cfg.Rules {
		w := words[i/2+1]
		off := uint(32 * (i % 2)) //nolint:gosec // 0 or 32
		target := getBits(words[0], uint(targetBits*i+timerRuleOff), targetBits) //nolint:gosec // i < 10
		cfg.Rules[i] = TimerRule{
			Mode:  decodeTarget(target),
			Start: uint16(getBits(w, off, minuteBits)),            //nolint:gosec // 16 bits
			End:   uint16(getBits(w, off+minuteBits, minuteBits)), //nolint:gosec // 16 bits
		}
	}
}

type timerRuleDoc struct {
	Mode        *int `json:"mode" validate:"required,slotref"`
	StartHour   int  `json:"startHour" validate:"min=0,max=23"`
	StartMinute int  `json:"startMinute" validate:"min=0,max=59"`
	EndHour     int  `json:"endHour" validate:"min=0,max=23"`
	EndMinute   int  `json:"endMinute" validate:"min=0,max=59"`
}

type timerRulesDoc struct {
	Rules []timerRuleDoc `validate:"max=10,dive"`
}

func (timerHandler) toDocument(cfg *Timer, _ *Env, data, schema Document) {
	rules := make([]Document, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, Document{
			"mode":        r.Mode,
			"startHour":   int(r.Start) / 60,
			"startMinute": int(r.Start) % 60,
			"endHour":     int(r.End) / 60,
			"endMinute":   int(r.End) % 60,
		})
	}
	data["mainMode"] = cfg.Main
	data["timers"] = rules

	schema["mainMode"] = schemaMode()
	schema["timers"] = schemaList(MaxTimers, Document{
		"mode":        schemaMode(),
		"startHour":   schemaInt(0, 23),
		"startMinute": schemaInt(0, 59),
		"endHour":     schemaInt(0, 23),
		"endMinute":   schemaInt(0, 59),
	})
}

func (timerHandler) fromDocument(cfg *Timer, _ *Env, doc Fields) error {
	var main int
	hasMain, err := doc.Decode("mainMode", &main)
	if err != nil {
		return err
	}
	if hasMain && !ValidTarget(main) {
		return fmt.Errorf("%w: mainMode %d", ErrInvalidField, main)
	}

	var list timerRulesDoc
	hasRules, err := doc.Decode("timers", &list.Rules)
	if err != nil {
		return err
	}
	if hasRules {
		if err := validateDoc(&list); err != nil {
			return err
		}
	}

	if hasMain {
		cfg.Main = main
	}
	if hasRules {
		cfg.Rules = make([]TimerRule, 0, len(list.Rules))
		for _, r := range list.Rules {
			cfg.Rules = append(cfg.Rules, TimerRule{
				Mode:  *r.Mode,
				Start: uint16(r.StartHour*60 + r.StartMinute), //nolint:gosec // validated
				End:   uint16(r.EndHour*60 + r.EndMinute),     //nolint:gosec // validated
			})
		}
	}
	return nil
}

func (timerHandler) onActivate(cfg *Timer, env *Env) {
	env.Surface.Clear()
	env.Surface.SetBrightness(cfg.Brightness)
	cfg.switchTo(env, cfg.Target(env.DayMinutes()))
}

func (timerHandler) onLoop(cfg *Timer, env *Env, now uint64) uint32 {
	if target := cfg.Target(env.DayMinutes()); !cfg.activated || target != cfg.current {
		log.Debug().Msgf("timer %q switches to slot %d", cfg.Name, target)
		cfg.switchTo(env, target)
	}

	if cfg.due || (cfg.delay > 0 && now-cfg.lastStep >= uint64(cfg.delay)) {
		cfg.due = false
		cfg.lastStep = now
		cfg.delay = env.LoopNext(now)
	}

	if cfg.delay == 0 || cfg.delay > metaPoll {
		return metaPoll
	}
	return cfg.delay
}
