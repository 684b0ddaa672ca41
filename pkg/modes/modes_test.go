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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordclock/wordclock-core/pkg/colors"
)

func TestKindLabels(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
		assert.Equal(t, k, HandlerFor(k).Kind())
		assert.Equal(t, k, HandlerFor(k).New(nil).Kind())
	}

	k, ok := ParseKind("wordclock")
	assert.True(t, ok)
	assert.Equal(t, KindWordClock, k)

	_, ok = ParseKind("LAVALAMP")
	assert.False(t, ok)
	assert.Equal(t, KindEmpty, KindFromTag(12))
	assert.Equal(t, "EMPTY", Kind(99).String())
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	wc, ok := HandlerFor(KindWordClock).New(env).(*WordClock)
	require.True(t, ok)
	assert.Equal(t, "WORDCLOCK", wc.Name)
	assert.Equal(t, DefaultBrightness, wc.Brightness)
	assert.Equal(t, colors.White, wc.Color)

	tm, ok := HandlerFor(KindTimer).New(env).(*Timer)
	require.True(t, ok)
	assert.Equal(t, OffIndex, tm.Main)
	assert.Equal(t, []TimerRule{{Mode: OffIndex, Start: 0, End: MinutesPerDay - 1}}, tm.Rules)

	iv, ok := HandlerFor(KindInterval).New(env).(*Interval)
	require.True(t, ok)
	assert.Equal(t, []IntervalStep{{Mode: OffIndex, Seconds: 60}}, iv.Steps)
}

func TestRetypePreservesIdentity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	old := HandlerFor(KindWordClock).New(env)
	name, _ := AsNamed(old)
	*name = "Kitchen"
	look, _ := AsColored(old)
	look.Color = 3
	look.Brightness = 77

	for _, k := range []Kind{KindDigiClock, KindPicture, KindTimer, KindInterval} {
		t.Run(k.String(), func(t *testing.T) {
			t.Parallel()
			cfg := Retype(old, k, env)
			require.Equal(t, k, cfg.Kind())
			n, ok := AsNamed(cfg)
			require.True(t, ok)
			assert.Equal(t, "Kitchen", *n)
			c, ok := AsColored(cfg)
			require.True(t, ok)
			assert.Equal(t, Appearance{Color: 3, Brightness: 77}, *c)
		})
	}
}

func TestRetypeWithoutIdentity(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	off := Retype(HandlerFor(KindPicture).New(env), KindOff, env)
	assert.Equal(t, KindOff, off.Kind())
	_, ok := AsNamed(off)
	assert.False(t, ok)

	// from EMPTY the new slot gets fresh defaults
	cfg := Retype(&Empty{}, KindDigiClock, env)
	n, ok := AsNamed(cfg)
	require.True(t, ok)
	assert.Equal(t, "DIGICLOCK", *n)
}

func TestCloneSharesNoMemory(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	tm, ok := HandlerFor(KindTimer).New(env).(*Timer)
	require.True(t, ok)
	cp, ok := Clone(tm).(*Timer)
	require.True(t, ok)
	cp.Rules[0].Mode = 3
	cp.Name = "Copy"
	assert.Equal(t, OffIndex, tm.Rules[0].Mode)
	assert.Equal(t, "TIMER", tm.Name)

	iv, ok := HandlerFor(KindInterval).New(env).(*Interval)
	require.True(t, ok)
	ivc, ok := Clone(iv).(*Interval)
	require.True(t, ok)
	ivc.Steps[0].Seconds = 5
	assert.Equal(t, uint16(60), iv.Steps[0].Seconds)

	pic := &Picture{Base: newBase(KindPicture)}
	pc, ok := Clone(pic).(*Picture)
	require.True(t, ok)
	pc.Pixels[0][0] = 1
	assert.Zero(t, pic.Pixels[0][0])

	for _, k := range Kinds() {
		cfg := HandlerFor(k).New(env)
		assert.Equal(t, cfg, Clone(cfg), k.String())
	}
	assert.Nil(t, Clone(nil))
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Bedroom (PICTURE)", Describe(&Picture{Base: Base{Name: "Bedroom"}}))
	assert.Equal(t, "OFF", Describe(&Off{}))
	assert.Equal(t, "EMPTY", Describe(nil))
}

func TestBaseFromDocument(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	tests := []struct {
		name    string
		doc     string
		want    Base
		wantErr bool
	}{
		{
			name: "all fields",
			doc:  `{"name":"Hall","color":"red","brightness":10}`,
			want: Base{Name: "Hall", Appearance: Appearance{Color: 1, Brightness: 10}},
		},
		{
			name: "color index",
			doc:  `{"color":7}`,
			want: Base{Name: "DIGICLOCK", Appearance: Appearance{Color: 7, Brightness: DefaultBrightness}},
		},
		{
			name: "name cut at NUL",
			doc:  `{"name":"ab\u0000cd"}`,
			want: Base{Name: "ab", Appearance: Appearance{Color: colors.White, Brightness: DefaultBrightness}},
		},
		{name: "brightness too high", doc: `{"name":"x","brightness":101}`, wantErr: true},
		{name: "unknown color", doc: `{"color":"chartreuse"}`, wantErr: true},
		{name: "color out of range", doc: `{"color":15}`, wantErr: true},
		{name: "wrong type", doc: `{"name":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &DigiClock{Base: newBase(KindDigiClock)}
			err := BaseFromDocument(cfg, env, fields(t, tt.doc))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidField)
				assert.Equal(t, newBase(KindDigiClock), cfg.Base, "failed merge must not mutate")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Base)
		})
	}
}

func TestBaseToDocument(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t).env

	data, schema := Document{}, Document{}
	BaseToDocument(&WordClock{Base: Base{Name: "Desk", Appearance: Appearance{Color: 6, Brightness: 20}}}, env, data, schema)
	assert.Equal(t, Document{"name": "Desk", "color": "blue", "brightness": uint8(20)}, data)
	assert.Contains(t, schema, "color")

	data, schema = Document{}, Document{}
	BaseToDocument(&Off{}, env, data, schema)
	assert.Empty(t, data)
	assert.Empty(t, schema)
}
