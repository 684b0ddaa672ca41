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

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockSurface is a mock implementation of display.Surface for testing.
type MockSurface struct {
	mock.Mock
}

// NewMockSurface creates a mock surface that accepts any drawing call.
func NewMockSurface() *MockSurface {
	m := &MockSurface{}
	m.On("Clear").Return().Maybe()
	m.On("SetPixel", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	m.On("SetBrightness", mock.Anything).Return().Maybe()
	return m
}

// Clear mocks clearing the surface.
func (m *MockSurface) Clear() {
	m.Called()
}

// SetPixel mocks lighting a single pixel.
func (m *MockSurface) SetPixel(x, y int, color uint8) {
	m.Called(x, y, color)
}

// SetBrightness mocks the brightness control.
func (m *MockSurface) SetBrightness(level uint8) {
	m.Called(level)
}

// Brightness returns the level passed to the most recent SetBrightness call,
// or false when there was none.
func (m *MockSurface) Brightness() (uint8, bool) {
	for i := len(m.Calls) - 1; i >= 0; i-- {
		c := m.Calls[i]
		if c.Method == "SetBrightness" {
			level, ok := c.Arguments.Get(0).(uint8)
			return level, ok
		}
	}
	return 0, false
}
