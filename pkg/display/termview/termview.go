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

// Package termview draws frames in a terminal, for running the clock on a
// machine without LEDs attached.
package termview

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
	"github.com/wordclock/wordclock-core/pkg/timedef"
)

const (
	// letters are spaced one column apart so the grid looks square
	cellWidth     = 2
	indicatorRune = '●'
)

var unlitStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(48, 48, 48))

// View renders every presented snapshot onto a tcell screen.
type View struct {
	screen tcell.Screen
	colors colors.Table
	mu     syncutil.Mutex
}

// Open initializes the terminal screen. Close restores it.
func Open(table colors.Table) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init terminal screen: %w", err)
	}
	return New(screen, table), nil
}

// New draws on an already initialized screen.
func New(screen tcell.Screen, table colors.Table) *View {
	if table == nil {
		table = colors.Default()
	}
	return &View{screen: screen, colors: table}
}

func (v *View) Present(snap display.Snapshot) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.screen == nil {
		return nil
	}

	v.screen.Clear()
	layout := strings.ToUpper(timedef.Layout)
	for row := range display.Height {
		for col := range display.Width {
			letter := rune(layout[row*display.Width+col])
			v.screen.SetContent(col*cellWidth, row, letter, nil, v.style(snap.Pixels[row][col], snap.Brightness))
		}
	}
	// indicators sit centered under the grid
	offset := (display.Width - display.Indicators) / 2
	for i, index := range snap.Indicators {
		v.screen.SetContent((offset+i)*cellWidth, display.IndicatorRow+1, indicatorRune, nil,
			v.style(index, snap.Brightness))
	}
	v.screen.Show()
	return nil
}

func (v *View) style(index, brightness uint8) tcell.Style {
	if index == colors.Off {
		return unlitStyle
	}
	c := v.colors.Color(index)
	// never dim a lit letter into the unlit gray
	level := max(int32(brightness), 30)
	scale := func(x uint8) int32 { return int32(x) * level / display.MaxBrightness }
	return tcell.StyleDefault.Bold(true).
		Foreground(tcell.NewRGBColor(scale(c.R), scale(c.G), scale(c.B)))
}

// WaitQuit blocks until the user presses q, Escape or Ctrl-C, then calls
// onQuit. It returns without calling onQuit once the view is closed.
func (v *View) WaitQuit(onQuit func()) {
	v.mu.Lock()
	screen := v.screen
	v.mu.Unlock()
	if screen == nil {
		return
	}
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				onQuit()
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.screen != nil {
		v.screen.Fini()
		v.screen = nil
	}
	return nil
}
