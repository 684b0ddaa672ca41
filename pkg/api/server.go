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

// Package api serves the configuration API: the modes document, static
// metadata, the live snapshot, resets and a websocket notification feed.
// The web client, when installed, is served under /app.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/wordclock/wordclock-core/pkg/api/middleware"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/config"
	"github.com/wordclock/wordclock-core/pkg/engine"
)

const (
	RequestTimeout    = 30 * time.Second
	MaxBodyBytes      = 64 << 10
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Runner executes engine calls on the goroutine that owns the engine.
type Runner interface {
	View(ctx context.Context, fn func(*engine.Engine) error) error
	Update(ctx context.Context, fn func(*engine.Engine) error) error
}

// ResetFunc handles the parts of a reset the engine cannot do itself.
type ResetFunc func(wifi, reboot bool) error

type Server struct {
	started  time.Time
	runner   Runner
	onReset  ResetFunc
	clock    clockwork.Clock
	ws       *melody.Melody
	limiter  *middleware.IPRateLimiter
	router   chi.Router
	deviceID string
}

// NewServer builds the router. Origins default to any http or https page,
// matching how the web client is usually opened from the clock's address.
func NewServer(cfg *config.Instance, runner Runner, onReset ResetFunc, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Server{
		started:  clock.Now(),
		runner:   runner,
		onReset:  onReset,
		clock:    clock,
		deviceID: cfg.DeviceID(),
		ws:       melody.New(),
		limiter:  middleware.NewIPRateLimiter(cfg.RateLimit(), 0, clock),
	}

	origins := cfg.AllowedOrigins()
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(middleware.HTTPRateLimitMiddleware(s.limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPatch, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.ws.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	s.ws.HandleMessage(middleware.WebSocketRateLimitHandler(s.limiter, handleWSMessage))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(RequestTimeout))
			r.Get("/modes", s.handleGetModes)
			r.Patch("/modes", s.handlePatchModes)
			r.Get("/configs", s.handleGetConfigs)
			r.Get("/live", s.handleGetLive)
			r.Post("/reset", s.handleReset)
			r.Get("/status", s.handleGetStatus)
		})
		r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			if err := s.ws.HandleRequest(w, r); err != nil {
				log.Error().Err(err).Msg("handling websocket request")
			}
		})
	})

	if web := WebFS(afero.NewOsFs(), cfg.WebRoot()); web != nil {
		r.Get("/app", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/app/", http.StatusFound)
		})
		r.Get("/app/*", http.StripPrefix("/app", fsCustom404(web)).ServeHTTP)
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Broadcast forwards notifications to every websocket client until ctx
// ends or the channel closes.
func (s *Server) Broadcast(ctx context.Context, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := s.ws.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Close disconnects all websocket clients.
func (s *Server) Close() error {
	if err := s.ws.Close(); err != nil {
		return fmt.Errorf("failed to close websocket hub: %w", err)
	}
	return nil
}

func handleWSMessage(session *melody.Session, msg []byte) {
	if string(msg) == "ping" {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}
	log.Debug().Int("size", len(msg)).Msg("ignoring websocket message")
}

// Start serves the API on cfg.APIListen until ctx ends.
func Start(
	ctx context.Context,
	cfg *config.Instance,
	runner Runner,
	notifications <-chan models.Notification,
	onReset ResetFunc,
) error {
	s := NewServer(cfg, runner, onReset, nil)
	s.limiter.StartCleanup(ctx)
	go s.Broadcast(ctx, notifications)

	srv := &http.Server{
		Addr:              cfg.APIListen(),
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting HTTP server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("stopping HTTP server")
	_ = s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	<-errCh
	return nil
}
