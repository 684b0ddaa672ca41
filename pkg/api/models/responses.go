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

package models

import "github.com/wordclock/wordclock-core/pkg/colors"

type FixedTimeResponse struct {
	Enabled bool `json:"enabled"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
}

type ModesResponse struct {
	Modes     []map[string]any  `json:"modes"`
	FixedTime FixedTimeResponse `json:"fixedTime"`
	Current   int               `json:"current"`
}

type ConfigsResponse struct {
	Colors map[string]colors.Color `json:"colors"`
	Times  map[string][]string     `json:"times"`
	Leds   map[string]string       `json:"leds"`
	Types  []string                `json:"types"`
}

type LiveTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// LiveResponse mirrors the grid row by row. Text holds the lit letters and
// Colors the palette key of every lit pixel, spaces elsewhere.
type LiveResponse struct {
	Text        map[string]string `json:"text"`
	Colors      map[string]string `json:"colors"`
	ActiveModes []int             `json:"activemodes"`
	Time        LiveTime          `json:"time"`
	Brightness  uint8             `json:"brightness"`
}

type ResetResponse struct {
	Data   bool `json:"data"`
	Wifi   bool `json:"wifi"`
	Reboot bool `json:"reboot"`
}

// StatusResponse describes the running process. SystemUptime and MemoryRSS
// are zero where the host does not report them.
type StatusResponse struct {
	Version       string  `json:"version"`
	DeviceID      string  `json:"deviceId"`
	Time          string  `json:"time"`
	Uptime        float64 `json:"uptime"`
	SystemUptime  float64 `json:"systemUptime,omitempty"`
	MemoryRSS     uint64  `json:"memoryRss,omitempty"`
	Clients       int     `json:"clients"`
	ClockReliable bool    `json:"clockReliable"`
}
