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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/internal/telemetry"
	"github.com/wordclock/wordclock-core/pkg/cli"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/config"
	"github.com/wordclock/wordclock-core/pkg/display/ledserial"
	"github.com/wordclock/wordclock-core/pkg/display/termview"
	"github.com/wordclock/wordclock-core/pkg/helpers"
	"github.com/wordclock/wordclock-core/pkg/service"
	"github.com/wordclock/wordclock-core/pkg/storage"
)

// exitRestart tells the supervisor to start the clock again after a reboot
// request from the API.
const exitRestart = 3

var errRestart = errors.New("restart requested")

func main() {
	err := run()
	telemetry.Close()
	if err != nil {
		if errors.Is(err, errRestart) {
			os.Exit(exitRestart)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()
	if flags.Pre(os.Stdout) {
		return nil
	}

	var logWriters []io.Writer
	// the preview owns the terminal
	if *flags.Daemon && !*flags.Preview {
		logWriters = []io.Writer{helpers.ConsoleWriter(os.Stderr)}
	}

	cfg, logCloser, err := cli.Setup(*flags.ConfigDir, config.BaseDefaults, logWriters)
	if err != nil {
		return err //nolint:wrapcheck // already descriptive
	}
	defer func() { _ = logCloser.Close() }()

	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			telemetry.Flush()
			log.Fatal().Msgf("panic: %v", r)
		}
	}()

	if err := telemetry.Init(telemetry.Options{
		Enabled:     cfg.ErrorReporting(),
		DSN:         cfg.ErrorReportingDSN(),
		Environment: cfg.ErrorReportingEnvironment(),
		DeviceID:    cfg.DeviceID(),
		AppVersion:  config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("error reporting not started")
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if handled, err := flags.Post(ctx, cfg, os.Stdout); handled {
		return err
	}

	log.Info().Msgf("version: %s", config.AppVersion)

	store, storeCloser, err := storage.Open(context.WithoutCancel(ctx), cfg.StoreBackend(), cfg.StorePath())
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	defer func() {
		if err := storeCloser.Close(); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()
	log.Info().Str("backend", cfg.StoreBackend()).Msgf("store: %s", cfg.StorePath())

	var ledPanel, preview service.Presenter
	if cfg.OutputEnabled() {
		p, err := ledserial.Open(cfg.OutputSerialPort(), cfg.OutputBaudRate(), colors.Default(), nil)
		if err != nil {
			log.Error().Err(err).Msg("led panel unavailable, running without output")
		} else {
			ledPanel = p
			defer func() {
				if err := p.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing led panel")
				}
			}()
		}
	}
	if *flags.Preview {
		view, err := termview.Open(colors.Default())
		if err != nil {
			return fmt.Errorf("error opening preview: %w", err)
		}
		preview = view
		defer func() { _ = view.Close() }()
		go view.WaitQuit(stopSignals)
	}

	reboot := make(chan struct{}, 1)
	onReset := func(wifi, rebootRequested bool) error {
		if wifi {
			log.Warn().Msg("wifi reset requested, network settings are managed by the host")
		}
		if rebootRequested {
			select {
			case reboot <- struct{}{}:
			default:
			}
		}
		return nil
	}

	_, stopSvc, done, err := service.Start(ctx, service.Options{
		Config:  cfg,
		Store:   store,
		Panel:   service.Panels(ledPanel, preview),
		OnReset: onReset,
	})
	if err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}

	watcher, err := cfg.Watch(func(c *config.Instance) {
		config.ApplyLogLevel(c.DebugLogging())
		log.Info().Msg("api, store and publisher changes apply after a restart")
	})
	if err != nil {
		log.Warn().Err(err).Msg("config changes will not be picked up until restart")
	} else {
		defer func() { _ = watcher.Close() }()
	}

	restart := false
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case <-done:
		log.Warn().Msg("service stopped unexpectedly")
	case <-reboot:
		log.Info().Msg("reboot requested")
		restart = true
	}

	if err := stopSvc(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("error stopping service: %w", err)
	}
	if restart {
		return errRestart
	}
	return nil
}
