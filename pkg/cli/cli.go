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

// Package cli holds the command line flags shared by the clock binaries and
// the offline maintenance actions behind them.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/config"
	"github.com/wordclock/wordclock-core/pkg/engine"
	"github.com/wordclock/wordclock-core/pkg/helpers"
	"github.com/wordclock/wordclock-core/pkg/storage"
)

const apiTimeout = 10 * time.Second

type Flags struct {
	Version   *bool
	Daemon    *bool
	ConfigDir *string
	Dump      *bool
	ResetData *bool
	API       *string
	Preview   *bool
}

// SetupFlags registers the common flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Version: fs.Bool("version", false, "print version and exit"),
		Daemon:  fs.Bool("daemon", false, "also log to stderr in a readable format"),
		ConfigDir: fs.String(
			"config-dir",
			"",
			"directory holding wordclock.toml and the stored modes",
		),
		Dump: fs.Bool(
			"dump",
			false,
			"print the stored modes document and exit",
		),
		ResetData: fs.Bool(
			"reset-data",
			false,
			"reset the stored modes to factory defaults and exit",
		),
		API: fs.String(
			"api",
			"",
			"call the running clock's API, e.g. \"GET /api/live\", and print the response",
		),
		Preview: fs.Bool(
			"preview",
			false,
			"draw the clock face in this terminal",
		),
	}
}

// Pre handles flags that need no config. It reports whether the process
// should exit.
func (f *Flags) Pre(out io.Writer) bool {
	if *f.Version {
		_, _ = fmt.Fprintf(out, "Wordclock v%s\n", config.AppVersion)
		return true
	}
	return false
}

// Setup resolves the config directory, starts logging and loads the config.
// The closer releases the log file.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	configDir string,
	defaults config.Values,
	writers []io.Writer,
) (*config.Instance, io.Closer, error) {
	if configDir == "" {
		dir, err := helpers.ConfigDir()
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // already descriptive
		}
		configDir = dir
	}

	closer, err := helpers.InitLogging(configDir, writers...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(configDir, defaults)
	if err != nil {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	config.ApplyLogLevel(cfg.DebugLogging())
	return cfg, closer, nil
}

// Post runs the maintenance flags. It reports whether one ran, in which
// case the process should exit instead of starting the clock.
func (f *Flags) Post(ctx context.Context, cfg *config.Instance, out io.Writer) (bool, error) {
	switch {
	case *f.Dump:
		return true, withEngine(ctx, cfg, func(e *engine.Engine) error {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(e.Modes()); err != nil {
				return fmt.Errorf("error encoding modes: %w", err)
			}
			return nil
		})
	case *f.ResetData:
		return true, withEngine(ctx, cfg, func(e *engine.Engine) error {
			if err := e.FactoryReset(); err != nil {
				return fmt.Errorf("error resetting modes: %w", err)
			}
			_, _ = fmt.Fprintln(out, "stored modes reset to factory defaults")
			return nil
		})
	case *f.API != "":
		return true, callAPI(ctx, cfg, *f.API, out)
	}
	return false, nil
}

// withEngine opens the configured store directly. Only use it while the
// clock service is not running.
func withEngine(ctx context.Context, cfg *config.Instance, fn func(*engine.Engine) error) error {
	store, closer, err := storage.Open(ctx, cfg.StoreBackend(), cfg.StorePath())
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing store")
		}
	}()

	e := engine.New(store, engine.Options{MaxLoopDelay: cfg.MaxLoopDelay()})
	if err := e.Load(); err != nil {
		return fmt.Errorf("error loading modes: %w", err)
	}
	return fn(e)
}

// callAPI sends "METHOD /path[ body]" to the local API.
func callAPI(ctx context.Context, cfg *config.Instance, spec string, out io.Writer) error {
	parts := strings.SplitN(strings.TrimSpace(spec), " ", 3)
	if len(parts) < 2 {
		return errors.New(`api flag wants "METHOD /path [body]"`)
	}
	method := strings.ToUpper(parts[0])
	var body io.Reader = http.NoBody
	if len(parts) == 3 {
		body = strings.NewReader(parts[2])
	}

	url := fmt.Sprintf("http://localhost:%d%s", cfg.APIPort(), parts[1])
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("API returned %s", resp.Status)
	}
	return nil
}
