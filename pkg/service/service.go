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

// Package service wires the engine, its scheduler and the network surfaces
// into one running clock.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/config"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/engine"
	"github.com/wordclock/wordclock-core/pkg/service/broker"
	"github.com/wordclock/wordclock-core/pkg/service/discovery"
	"github.com/wordclock/wordclock-core/pkg/service/publishers"
	"github.com/wordclock/wordclock-core/pkg/storage"
	"golang.org/x/sync/errgroup"
)

const notificationQueueSize = 100

type Options struct {
	Config *config.Instance
	Store  storage.Store
	// Output is the LED driver. Optional.
	Output display.Surface
	// Panel receives every finished frame. Optional.
	Panel Presenter
	Clock clockwork.Clock
	// OnReset handles the wifi and reboot flags of a reset request.
	OnReset api.ResetFunc
	// DisableAPI skips the HTTP server and mDNS, for tests.
	DisableAPI bool
}

// Start loads the stored slots and runs the clock until stop is called or
// ctx ends. done is closed after everything has shut down.
func Start(
	ctx context.Context,
	opts Options,
) (sched *Scheduler, stop func() error, done <-chan struct{}, err error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, nil, nil, errors.New("service needs a config and a store")
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cfg := opts.Config

	eng := engine.New(opts.Store, engine.Options{
		Output:       opts.Output,
		Clock:        clock,
		Colors:       colors.Default(),
		MaxLoopDelay: cfg.MaxLoopDelay(),
	})
	if loadErr := eng.Load(); loadErr != nil {
		log.Error().Err(loadErr).Msg("failed to load stored modes, running factory defaults")
	}

	ctx, cancel := context.WithCancel(ctx)
	ns := make(chan models.Notification, notificationQueueSize)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	sched = NewScheduler(eng, clock, cfg.TickInterval(), ns)
	if opts.Panel != nil {
		sched.SetPanel(opts.Panel)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})

	activePublishers := startPublishers(gctx, g, cfg, notifBroker)

	var disc *discovery.Service
	if !opts.DisableAPI {
		disc = discovery.New(cfg, clock)
		if discErr := disc.Start(); discErr != nil {
			log.Error().Err(discErr).Msg("mDNS discovery failed to start")
		}

		apiNotifications, apiSub := notifBroker.Subscribe(notificationQueueSize)
		g.Go(func() error {
			defer notifBroker.Unsubscribe(apiSub)
			if apiErr := api.Start(gctx, cfg, sched, apiNotifications, opts.OnReset); apiErr != nil {
				return fmt.Errorf("api server: %w", apiErr)
			}
			return nil
		})
	}

	doneCh := make(chan struct{})
	var runErr error
	go func() {
		runErr = g.Wait()
		log.Info().Msg("service stopping, running cleanup")
		if disc != nil {
			disc.Stop()
		}
		for _, p := range activePublishers {
			p.Stop()
		}
		cancel()
		<-notifBroker.Done()
		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return runErr
	}
	return sched, stop, doneCh, nil
}

// startPublishers connects the configured MQTT publishers and feeds them
// from one broker subscription. Nothing subscribes when none connect.
func startPublishers(
	ctx context.Context,
	g *errgroup.Group,
	cfg *config.Instance,
	notifBroker *broker.Broker,
) []*publishers.MQTTPublisher {
	var active []*publishers.MQTTPublisher
	for _, pc := range cfg.MQTTPublishers() {
		log.Info().Msgf("starting MQTT publisher: %s (topic: %s)", pc.Broker, pc.Topic)
		p := publishers.NewMQTTPublisher(pc.Broker, pc.Topic, pc.Filter)
		if err := p.Start(); err != nil {
			log.Error().Err(err).Msgf("failed to start MQTT publisher for %s", pc.Broker)
			continue
		}
		active = append(active, p)
	}
	if len(active) == 0 {
		return nil
	}

	notifications, id := notifBroker.Subscribe(notificationQueueSize)
	g.Go(func() error {
		defer notifBroker.Unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return nil
			case n, ok := <-notifications:
				if !ok {
					return nil
				}
				for _, p := range active {
					if err := p.Publish(n); err != nil {
						log.Warn().Err(err).Msgf("failed to publish %s to %s", n.Method, p.Broker())
					}
				}
			}
		}
	})
	return active
}
