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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/api/validation"
	"github.com/wordclock/wordclock-core/pkg/config"
	"github.com/wordclock/wordclock-core/pkg/engine"
	"github.com/wordclock/wordclock-core/pkg/helpers"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, models.ErrorObject{Code: status, Message: err.Error()})
}

// writeRunnerError maps scheduler failures. A request whose context ended
// first gets 503, anything else 500.
func writeRunnerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("engine request failed")
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, err //nolint:wrapcheck // reported as-is to the client
	}
	return body, nil
}

func (s *Server) handleGetModes(w http.ResponseWriter, r *http.Request) {
	var doc models.ModesResponse
	err := s.runner.View(r.Context(), func(e *engine.Engine) error {
		doc = e.Modes()
		return nil
	})
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handlePatchModes rejects bodies that are not JSON with the parser's
// message. Bad entries inside a well-formed body are skipped by the engine.
func (s *Server) handlePatchModes(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	params, err := engine.ParsePatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var doc models.ModesResponse
	err = s.runner.Update(r.Context(), func(e *engine.Engine) error {
		e.Patch(&params)
		doc = e.Modes()
		return nil
	})
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetConfigs(w http.ResponseWriter, r *http.Request) {
	var doc models.ConfigsResponse
	err := s.runner.View(r.Context(), func(e *engine.Engine) error {
		doc = e.Configs()
		return nil
	})
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetLive(w http.ResponseWriter, r *http.Request) {
	var doc models.LiveResponse
	err := s.runner.View(r.Context(), func(e *engine.Engine) error {
		doc = e.Live()
		return nil
	})
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleReset wipes the stored slots when data is set. Wifi and reboot are
// handed to the reset callback after the data reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var params models.ResetParams
	if err := validation.ValidateAndUnmarshal(body, &params); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := models.ResetResponse{
		Data:   params.Data != nil && *params.Data,
		Wifi:   params.Wifi != nil && *params.Wifi,
		Reboot: params.Reboot != nil && *params.Reboot,
	}

	if resp.Data {
		log.Info().Msg("resetting stored modes to factory defaults")
		err := s.runner.Update(r.Context(), func(e *engine.Engine) error {
			return e.FactoryReset()
		})
		if err != nil {
			writeRunnerError(w, err)
			return
		}
	}

	if resp.Wifi || resp.Reboot {
		if s.onReset == nil {
			writeError(w, http.StatusNotImplemented, errors.New("wifi and reboot resets are not supported here"))
			return
		}
		if err := s.onReset(resp.Wifi, resp.Reboot); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, _ *http.Request) {
	now := s.clock.Now()
	resp := models.StatusResponse{
		Version:       config.AppVersion,
		DeviceID:      s.deviceID,
		Time:          now.Format(time.RFC3339),
		Uptime:        now.Sub(s.started).Seconds(),
		Clients:       s.ws.Len(),
		ClockReliable: helpers.IsClockReliable(now),
	}
	if up, err := helpers.SystemUptime(); err == nil {
		resp.SystemUptime = up.Seconds()
	} else {
		log.Debug().Err(err).Msg("status without system uptime")
	}
	if rss, err := helpers.ProcessMemory(); err == nil {
		resp.MemoryRSS = rss
	} else {
		log.Debug().Err(err).Msg("status without memory usage")
	}
	writeJSON(w, http.StatusOK, resp)
}
