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
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/engine"
	"github.com/wordclock/wordclock-core/pkg/modes"
	"github.com/wordclock/wordclock-core/pkg/storage"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	sched  *Scheduler
	clock  *clockwork.FakeClock
	ns     chan models.Notification
	cancel context.CancelFunc
	runErr chan error
}

func startScheduler(t *testing.T, panel ...Presenter) *harness {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 22, 48, 0, 0, time.Local))
	eng := engine.New(storage.NewMemoryStore(), engine.Options{Clock: clock})
	require.NoError(t, eng.Load())

	ns := make(chan models.Notification, 32)
	h := &harness{
		sched:  NewScheduler(eng, clock, 50*time.Millisecond, ns),
		clock:  clock,
		ns:     ns,
		runErr: make(chan error, 1),
	}
	for _, p := range panel {
		h.sched.SetPanel(p)
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.runErr <- h.sched.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.sched.stopped
}

func (h *harness) waitFor(t *testing.T, method string) models.Notification {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case n := <-h.ns:
			if n.Method == method {
				return n
			}
		case <-timeout:
			t.Fatalf("no %s notification", method)
		}
	}
}

func TestSchedulerPublishesInitialLive(t *testing.T) {
	t.Parallel()
	h := startScheduler(t)

	n := h.waitFor(t, models.NotificationLiveChanged)
	var live models.LiveResponse
	require.NoError(t, json.Unmarshal(n.Params, &live))
	assert.Equal(t, []int{0}, live.ActiveModes)
	assert.Equal(t, 22, live.Time.Hours)
	assert.Equal(t, 48, live.Time.Minutes)
}

func TestSchedulerTickFollowsClock(t *testing.T) {
	t.Parallel()
	h := startScheduler(t)
	h.waitFor(t, models.NotificationLiveChanged)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(5 * time.Minute)

	n := h.waitFor(t, models.NotificationLiveChanged)
	var live models.LiveResponse
	require.NoError(t, json.Unmarshal(n.Params, &live))
	assert.Equal(t, 53, live.Time.Minutes)
}

func TestSchedulerUpdatePublishesModes(t *testing.T) {
	t.Parallel()
	h := startScheduler(t)
	h.waitFor(t, models.NotificationLiveChanged)

	ctx := context.Background()
	require.NoError(t, h.sched.Update(ctx, func(e *engine.Engine) error {
		if !e.SetCurrent(1) {
			return errors.New("slot 1 rejected")
		}
		return nil
	}))

	n := h.waitFor(t, models.NotificationModesChanged)
	var doc models.ModesResponse
	require.NoError(t, json.Unmarshal(n.Params, &doc))
	assert.Equal(t, 1, doc.Current)

	n = h.waitFor(t, models.NotificationLiveChanged)
	var live models.LiveResponse
	require.NoError(t, json.Unmarshal(n.Params, &live))
	assert.Equal(t, []int{1}, live.ActiveModes)

	var current int
	require.NoError(t, h.sched.View(ctx, func(e *engine.Engine) error {
		current = e.Current()
		return nil
	}))
	assert.Equal(t, 1, current)
}

func TestSchedulerReturnsRequestError(t *testing.T) {
	t.Parallel()
	h := startScheduler(t)

	err := h.sched.View(context.Background(), func(*engine.Engine) error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}

func TestSchedulerStopped(t *testing.T) {
	t.Parallel()
	h := startScheduler(t)
	h.stop()
	require.NoError(t, <-h.runErr)

	err := h.sched.View(context.Background(), func(*engine.Engine) error { return nil })
	require.ErrorIs(t, err, ErrStopped)
}

func TestSchedulerCallerContext(t *testing.T) {
	t.Parallel()
	sched := NewScheduler(engine.New(storage.NewMemoryStore(), engine.Options{}), nil, 0, nil)
	assert.Equal(t, DefaultTickInterval, sched.interval)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sched.Update(ctx, func(*engine.Engine) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

type recordingPanel struct {
	frames chan display.Snapshot
	err    error
}

func (p *recordingPanel) Present(snap display.Snapshot) error {
	select {
	case p.frames <- snap:
	default:
	}
	return p.err
}

func TestSchedulerPresentsFrames(t *testing.T) {
	t.Parallel()
	panel := &recordingPanel{frames: make(chan display.Snapshot, 8), err: errors.New("unplugged")}
	startScheduler(t, panel)

	select {
	case snap := <-panel.frames:
		assert.Equal(t, modes.DefaultBrightness, snap.Brightness)
		assert.NotEqual(t, [display.Indicators]uint8{}, snap.Indicators, "48 minutes lights three indicators")
	case <-time.After(2 * time.Second):
		t.Fatal("no frame presented")
	}
}

func TestPanelsJoinsErrors(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Panels(nil, nil))

	ok := &recordingPanel{frames: make(chan display.Snapshot, 1)}
	bad := &recordingPanel{frames: make(chan display.Snapshot, 1), err: errors.New("unplugged")}
	p := Panels(bad, nil, ok)

	err := p.Present(display.Snapshot{Brightness: 7})
	require.ErrorContains(t, err, "unplugged")
	assert.Equal(t, uint8(7), (<-ok.frames).Brightness, "a failing panel does not block the next")
	assert.Len(t, bad.frames, 1)
}
