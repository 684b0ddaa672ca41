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

package helpers

import (
	"fmt"
	"os"
	"time"

	"github.com/mackerelio/go-osstat/uptime"
	"github.com/shirou/gopsutil/v4/process"
)

// MinReliableYear is the earliest year the system clock is trusted in.
// Boards without an RTC boot at the epoch until NTP syncs.
const MinReliableYear = 2024

func IsClockReliable(t time.Time) bool {
	return t.Year() >= MinReliableYear
}

// SystemUptime is the time since the host booted.
func SystemUptime() (time.Duration, error) {
	d, err := uptime.Get()
	if err != nil {
		return 0, fmt.Errorf("failed to get system uptime: %w", err)
	}
	return d, nil
}

// ProcessMemory is the resident set size of this process in bytes.
func ProcessMemory() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return 0, fmt.Errorf("failed to open own process: %w", err)
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("failed to read process memory: %w", err)
	}
	return mem.RSS, nil
}
