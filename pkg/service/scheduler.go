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

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/engine"
	"github.com/wordclock/wordclock-core/pkg/service/broker"
)

// DefaultTickInterval is how often the scheduler polls the engine.
const DefaultTickInterval = 50 * time.Millisecond

var ErrStopped = errors.New("scheduler stopped")

// Presenter shows finished frames, usually on the LED hardware.
type Presenter interface {
	Present(snap display.Snapshot) error
}

type panels []Presenter

// Panels presents every frame on each of ps in order. Nil entries are
// skipped and errors are joined.
func Panels(ps ...Presenter) Presenter {
	out := make(panels, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (ps panels) Present(snap display.Snapshot) error {
	var errs []error
	for _, p := range ps {
		if err := p.Present(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type request struct {
	fn     func(*engine.Engine) error
	done   chan error
	mutate bool
}

// Scheduler is the only goroutine touching the engine. Ticks and API
// requests are serialized through its loop.
type Scheduler struct {
	eng      *engine.Engine
	clock    clockwork.Clock
	ns       chan<- models.Notification
	panel    Presenter
	requests chan request
	stopped  chan struct{}
	started  time.Time
	lastLive []byte
	interval time.Duration
}

// NewScheduler wraps eng. Notifications go to ns, which may be nil.
func NewScheduler(
	eng *engine.Engine,
	clock clockwork.Clock,
	interval time.Duration,
	ns chan<- models.Notification,
) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		eng:      eng,
		clock:    clock,
		ns:       ns,
		interval: interval,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run drives the engine until ctx ends. The engine sees milliseconds since
// Run was called as its monotonic time.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.stopped)

	s.started = s.clock.Now()
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msgf("scheduler started: %s", s.eng.Describe())
	s.step()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.Chan():
			s.step()
		case req := <-s.requests:
			err := req.fn(s.eng)
			if req.mutate {
				s.notify(models.NotificationModesChanged, s.eng.Modes())
				s.step()
			}
			req.done <- err
		}
	}
}

// Now is the engine time in milliseconds.
func (s *Scheduler) Now() uint64 {
	return uint64(s.clock.Since(s.started).Milliseconds()) //nolint:gosec // never negative
}

// SetPanel sets where frames are shown. Call before Run.
func (s *Scheduler) SetPanel(p Presenter) {
	s.panel = p
}

func (s *Scheduler) step() {
	if !s.eng.Tick(s.Now()) {
		return
	}
	if s.panel != nil {
		if err := s.panel.Present(s.eng.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("failed to present frame")
		}
	}
	live := s.eng.Live()
	data, err := json.Marshal(live)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode live snapshot")
		return
	}
	if bytes.Equal(data, s.lastLive) {
		return
	}
	s.lastLive = data
	s.notify(models.NotificationLiveChanged, json.RawMessage(data))
}

func (s *Scheduler) notify(method string, payload any) {
	if s.ns == nil {
		return
	}
	if err := broker.Send(s.ns, method, payload); err != nil {
		log.Error().Err(err).Msg("failed to send notification")
	}
}

// View runs fn on the scheduler goroutine and waits for it.
func (s *Scheduler) View(ctx context.Context, fn func(*engine.Engine) error) error {
	return s.do(ctx, fn, false)
}

// Update is View for changes: afterwards the new modes document is
// published and the engine gets a tick so the display follows at once.
func (s *Scheduler) Update(ctx context.Context, fn func(*engine.Engine) error) error {
	return s.do(ctx, fn, true)
}

func (s *Scheduler) do(ctx context.Context, fn func(*engine.Engine) error, mutate bool) error {
	req := request{fn: fn, mutate: mutate, done: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // caller's own context
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // caller's own context
	}
}
