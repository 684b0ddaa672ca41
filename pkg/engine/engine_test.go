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

package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/codec"
	"github.com/wordclock/wordclock-core/pkg/modes"
	"github.com/wordclock/wordclock-core/pkg/storage"
	"github.com/wordclock/wordclock-core/pkg/testing/mocks"
)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 22, 48, 0, 0, time.Local))
	e := New(store, Options{Clock: clock})
	require.NoError(t, e.Load())
	return e, store
}

func patch(t *testing.T, e *Engine, body string) {
	t.Helper()
	params, err := ParsePatch([]byte(body))
	require.NoError(t, err)
	e.Patch(&params)
}

func TestLoadSeedsDefaultsOnMarkerMismatch(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStore()
	garbage := make([]byte, codec.RecordSize)
	garbage[0] = 0x43
	garbage[1] = 7
	store.Preload(garbage)

	e := New(store, Options{Clock: clockwork.NewFakeClock()})
	require.NoError(t, e.Load())

	assert.Equal(t, 0, e.Current())
	assert.Equal(t, modes.KindWordClock, e.Slot(0).Kind())
	assert.Equal(t, "WORDCLOCK", *mustNamed(t, e.Slot(0)))
	assert.Equal(t, modes.KindDigiClock, e.Slot(1).Kind())
	assert.Equal(t, "DIGICLOCK", *mustNamed(t, e.Slot(1)))
	for i := 2; i < modes.SlotCount; i++ {
		assert.Equal(t, modes.KindEmpty, e.Slot(i).Kind(), "slot %d", i)
	}

	assert.Equal(t, 1, store.Commits(), "defaults are written back")
	assert.Equal(t, codec.Marker, store.Committed()[0])
}

func mustNamed(t *testing.T, cfg modes.Config) *string {
	t.Helper()
	name, ok := modes.AsNamed(cfg)
	require.True(t, ok)
	return name
}

func TestSaveLoadKeepsSlots(t *testing.T) {
	t.Parallel()
	e, store := newTestEngine(t)

	patch(t, e, `{
		"modes": [
			{"index": 2, "type": "PICTURE", "name": "Heart", "color": "red", "brightness": 80,
			 "color1": "blue", "pixels": {"0": "12"}},
			{"index": 3, "type": "TIMER", "mainMode": 0,
			 "timers": [{"mode": 2, "startHour": 22, "startMinute": 0, "endHour": 6, "endMinute": 0}]}
		],
		"current": 3
	}`)
	require.NoError(t, e.Save())

	other := New(store, Options{Clock: clockwork.NewFakeClock()})
	require.NoError(t, other.Load())

	assert.Equal(t, 3, other.Current())
	assert.Equal(t, e.Modes().Modes, other.Modes().Modes)
}

func TestPatchAppliesEntriesIndependently(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	patch(t, e, `{"modes": [
		{"index": 40, "name": "nowhere"},
		{"index": 0, "name": "Kitchen", "color": 3},
		{"index": 1, "type": "SPINNER"},
		{"index": 1, "brightness": 300},
		{"name": "no index"}
	]}`)

	assert.Equal(t, "Kitchen", *mustNamed(t, e.Slot(0)))
	look, ok := modes.AsColored(e.Slot(0))
	require.True(t, ok)
	assert.Equal(t, uint8(3), look.Color)

	assert.Equal(t, modes.KindDigiClock, e.Slot(1).Kind())
	look, ok = modes.AsColored(e.Slot(1))
	require.True(t, ok)
	assert.Equal(t, modes.DefaultBrightness, look.Brightness)
}

func TestPatchRetypeCarriesIdentity(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	patch(t, e, `{"modes": [{"index": 0, "name": "Kitchen", "color": "magenta"}]}`)
	patch(t, e, `{"modes": [{"index": 0, "type": "digiclock"}]}`)

	assert.Equal(t, modes.KindDigiClock, e.Slot(0).Kind())
	assert.Equal(t, "Kitchen", *mustNamed(t, e.Slot(0)))
	look, _ := modes.AsColored(e.Slot(0))
	assert.Equal(t, uint8(3), look.Color)

	patch(t, e, `{"modes": [{"index": 0, "type": "OFF"}]}`)
	assert.Equal(t, modes.KindOff, e.Slot(0).Kind())
}

func TestPatchRejectedEntryLeavesSlotUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry string
	}{
		{
			name: "retype with bad timer rule",
			entry: `{"index": 0, "type": "TIMER", "name": "Night",
				"timers": [{"mode": 99, "startHour": 22, "startMinute": 0, "endHour": 6, "endMinute": 0}]}`,
		},
		{name: "retype with bad brightness", entry: `{"index": 0, "type": "DIGICLOCK", "brightness": 300}`},
		{name: "same kind with bad choice", entry: `{"index": 0, "name": "Night", "color": "red", "config": [7]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, _ := newTestEngine(t)
			before := e.Modes().Modes[0]

			patch(t, e, `{"modes": [`+tt.entry+`]}`)

			assert.Equal(t, modes.KindWordClock, e.Slot(0).Kind())
			assert.Equal(t, "WORDCLOCK", *mustNamed(t, e.Slot(0)))
			assert.Equal(t, before, e.Modes().Modes[0])
		})
	}
}

func TestPatchCurrent(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	patch(t, e, `{"current": 1}`)
	assert.Equal(t, 1, e.Current())
	assert.Equal(t, []int{1}, e.Live().ActiveModes)

	patch(t, e, `{"current": 16}`)
	assert.Equal(t, 1, e.Current(), "out of range root is ignored")

	patch(t, e, `{"current": -1}`)
	assert.Equal(t, modes.OffIndex, e.Current())
	e.Tick(0)
	assert.Zero(t, e.Snapshot().Brightness)
}

func TestPatchFixedTime(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	patch(t, e, `{"fixedTime": {"enabled": true, "hours": 10, "minutes": 30}}`)
	got := e.Modes().FixedTime
	assert.Equal(t, models.FixedTimeResponse{Enabled: true, Hours: 10, Minutes: 30}, got)

	patch(t, e, `{"fixedTime": {"enabled": true, "hours": 24, "minutes": 0}}`)
	assert.Equal(t, got, e.Modes().FixedTime, "invalid time is ignored")
}

func TestParsePatchMalformed(t *testing.T) {
	t.Parallel()
	_, err := ParsePatch([]byte(`{"modes": [`))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
}

func TestTickScheduling(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	assert.True(t, e.Tick(10_000), "first step runs right after activation")
	assert.Equal(t, uint32(1000), e.Delay())
	assert.False(t, e.Tick(10_500))
	assert.False(t, e.Tick(11_000), "delay must be exceeded")
	assert.True(t, e.Tick(11_001))

	// a picture draws once and then idles
	patch(t, e, `{"modes": [{"index": 2, "type": "PICTURE"}], "current": 2}`)
	assert.True(t, e.Tick(12_000))
	assert.Zero(t, e.Delay())
	assert.False(t, e.Tick(99_000))
}

func TestTickCapsDelay(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStore()
	e := New(store, Options{Clock: clockwork.NewFakeClock(), MaxLoopDelay: 200 * time.Millisecond})
	require.NoError(t, e.Load())

	require.True(t, e.Tick(0))
	assert.Equal(t, uint32(200), e.Delay())
	assert.True(t, e.Tick(201))
}

func TestSelfReferencingTimerIsBounded(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	assert.NotPanics(t, func() {
		patch(t, e, `{"modes": [{"index": 2, "type": "TIMER", "mainMode": 2, "timers": []}], "current": 2}`)
		e.Tick(0)
	})
	chain := e.Live().ActiveModes
	require.Len(t, chain, modes.SlotCount)
	for _, i := range chain {
		assert.Equal(t, 2, i)
	}
	assert.Equal(t, modes.KindWordClock, e.Slot(0).Kind())
}

func TestFlashExposesStoredState(t *testing.T) {
	t.Parallel()
	e, store := newTestEngine(t)

	patch(t, e, `{"modes": [{"index": 0, "name": "Saved"}], "flash": true}`)
	assert.Equal(t, "Saved", *mustNamed(t, e.Slot(0)))

	store.FailCommits(true)
	patch(t, e, `{"modes": [{"index": 0, "name": "Lost"}], "flash": true}`)
	assert.Equal(t, "Saved", *mustNamed(t, e.Slot(0)), "reload shows what the store holds")
}

func TestLoadReadFailureKeepsDefaults(t *testing.T) {
	t.Parallel()
	store := &mocks.MockStore{}
	store.On("Begin", codec.RecordSize).Return(errors.New("bus error"))

	e := New(store, Options{Clock: clockwork.NewFakeClock()})
	require.Error(t, e.Load())
	assert.Equal(t, modes.KindWordClock, e.Slot(0).Kind())
	assert.Equal(t, []int{0}, e.Live().ActiveModes)
	store.AssertNotCalled(t, "Commit")
}

func TestSaveReportsCommitFailure(t *testing.T) {
	t.Parallel()
	store := &mocks.MockStore{}
	store.On("Begin", codec.RecordSize).Return(nil)
	store.On("Write", 0, mock.AnythingOfType("[]uint8")).Return(nil)
	store.On("Commit").Return(errors.New("flash worn out"))

	e := New(store, Options{Clock: clockwork.NewFakeClock()})
	require.Error(t, e.Save())
	store.AssertExpectations(t)
}

func TestFactoryReset(t *testing.T) {
	t.Parallel()
	e, store := newTestEngine(t)

	patch(t, e, `{"modes": [{"index": 5, "type": "DIGICLOCK"}], "current": 5,
		"fixedTime": {"enabled": true, "hours": 1, "minutes": 2}}`)
	require.NoError(t, e.FactoryReset())

	assert.Equal(t, 0, e.Current())
	assert.Equal(t, modes.KindEmpty, e.Slot(5).Kind())
	assert.False(t, e.Modes().FixedTime.Enabled)
	assert.Equal(t, codec.Marker, store.Committed()[0])
}
