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

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// ============================================================================
// Duration Property Tests
// ============================================================================

// TestPropertyDurationsRoundTrip verifies any positive duration written to
// the file is read back unchanged.
func TestPropertyDurationsRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	rapid.Check(t, func(t *rapid.T) {
		tick := time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "tick"))
		maxDelay := time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "max"))

		path := filepath.Join(dir, "wordclock.toml")
		content := "config_schema = 1\n[engine]\n" +
			"tick_interval = \"" + tick.String() + "\"\n" +
			"max_loop_delay = \"" + maxDelay.String() + "\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		cfg := &Instance{cfgPath: path, defaults: BaseDefaults}
		if err := cfg.Load(); err != nil {
			t.Fatalf("load: %v", err)
		}
		if got := cfg.TickInterval(); got != tick {
			t.Fatalf("tick interval %s, want %s", got, tick)
		}
		if got := cfg.MaxLoopDelay(); got != maxDelay {
			t.Fatalf("max loop delay %s, want %s", got, maxDelay)
		}
	})
}

// TestPropertyPortDefaulting verifies APIListen always follows APIPort when
// no listen address is set.
func TestPropertyPortDefaulting(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := &Instance{}
		cfg.SetAPIPort(port)
		if got, want := cfg.APIListen(), ":"+strconv.Itoa(port); got != want {
			t.Fatalf("listen %q, want %q", got, want)
		}
	})
}
