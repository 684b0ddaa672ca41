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

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/api/validation"
	"github.com/wordclock/wordclock-core/pkg/colors"
	"github.com/wordclock/wordclock-core/pkg/display"
	"github.com/wordclock/wordclock-core/pkg/modes"
	"github.com/wordclock/wordclock-core/pkg/timedef"
)

var (
	ErrMalformed    = errors.New("malformed request")
	ErrBadSlotIndex = errors.New("slot index out of range")
	ErrUnknownKind  = errors.New("unknown mode type")
)

const indicatorGlyph = '*'

// Modes returns the GET /api/modes document.
func (e *Engine) Modes() models.ModesResponse {
	out := models.ModesResponse{
		Modes:   make([]map[string]any, 0, modes.SlotCount),
		Current: e.current,
		FixedTime: models.FixedTimeResponse{
			Enabled: e.env.Fixed.Enabled,
			Hours:   int(e.env.Fixed.Hours),
			Minutes: int(e.env.Fixed.Minutes),
		},
	}
	for i, cfg := range e.slots {
		out.Modes = append(out.Modes, e.modeDocument(i, cfg))
	}
	return out
}

func (e *Engine) modeDocument(i int, cfg modes.Config) modes.Document {
	h := modes.HandlerFor(cfg.Kind())
	data := modes.Document{}
	schema := modes.Document{}
	modes.BaseToDocument(cfg, e.env, data, schema)
	h.ToDocument(cfg, e.env, data, schema)
	data["index"] = i
	data["type"] = cfg.Kind().String()
	data["schema"] = schema
	return data
}

// ParsePatch decodes a PATCH /api/modes body. The error wraps ErrMalformed
// and carries the parser message.
func ParsePatch(body []byte) (models.ModesPatchParams, error) {
	var params models.ModesPatchParams
	if err := json.Unmarshal(body, &params); err != nil {
		return params, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return params, nil
}

// Patch applies a modes patch. Each mode entry is applied on its own: an
// entry that names a bad slot, an unknown type or an invalid field is logged
// and skipped while the others still apply. Only the first SlotCount entries
// are looked at. The root is always activated
// again afterwards. With flash set the slots are saved and read back.
func (e *Engine) Patch(params *models.ModesPatchParams) {
	if params.FixedTime != nil {
		e.patchFixedTime(params.FixedTime)
	}

	for i, raw := range params.Modes {
		if i >= modes.SlotCount {
			log.Warn().Msgf("ignoring %d mode entries past the first %d", len(params.Modes)-i, modes.SlotCount)
			break
		}
		if err := e.patchMode(raw); err != nil {
			log.Warn().Err(err).Msgf("skipping mode entry %d", i)
		}
	}

	if params.Current == nil || !e.SetCurrent(*params.Current) {
		e.activateRoot()
	}

	if params.Flash != nil && *params.Flash {
		if err := e.Reload(); err != nil {
			log.Error().Err(err).Msg("failed to reload slots after flash")
		}
	}
}

func (e *Engine) patchFixedTime(ft *models.FixedTimeParams) {
	if err := validation.DefaultValidator.Validate(ft); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid fixed time")
		return
	}
	log.Info().Bool("enabled", ft.Enabled).Int("hours", ft.Hours).Int("minutes", ft.Minutes).
		Msg("update fixed time")
	e.env.Fixed = modes.FixedTime{
		Enabled: ft.Enabled,
		Hours:   uint8(ft.Hours),   //nolint:gosec // validated
		Minutes: uint8(ft.Minutes), //nolint:gosec // validated
	}
}

func (e *Engine) patchMode(raw json.RawMessage) error {
	var doc modes.Fields
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var index int
	ok, err := doc.Decode("index", &index)
	if err != nil {
		return err
	}
	if !ok || index < 0 || index >= modes.SlotCount {
		return fmt.Errorf("%w: %d", ErrBadSlotIndex, index)
	}

	// changes land on a copy so a rejected entry leaves the slot untouched
	cfg := modes.Clone(e.slots[index])
	var label string
	if _, err := doc.Decode("type", &label); err != nil {
		return err
	}
	retyped := false
	if label != "" {
		kind, ok := modes.ParseKind(label)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKind, label)
		}
		if kind != cfg.Kind() {
			cfg = modes.Retype(cfg, kind, e.env)
			retyped = true
		}
	}

	if err := modes.BaseFromDocument(cfg, e.env, doc); err != nil {
		return fmt.Errorf("slot %d: %w", index, err)
	}
	if err := modes.HandlerFor(cfg.Kind()).FromDocument(cfg, e.env, doc); err != nil {
		return fmt.Errorf("slot %d: %w", index, err)
	}
	if retyped {
		log.Info().Msgf("slot %d: %s becomes %s", index, modes.Describe(e.slots[index]), cfg.Kind())
	}
	e.slots[index] = cfg
	return nil
}

// Configs returns the static metadata clients need to edit modes.
func (e *Engine) Configs() models.ConfigsResponse {
	kinds := modes.Kinds()
	types := make([]string, 0, len(kinds))
	for _, k := range kinds {
		types = append(types, k.String())
	}

	table := timedef.Table()
	times := make(map[string][]string, len(table))
	for i, variants := range table {
		times[strconv.Itoa(i)] = variants
	}

	return models.ConfigsResponse{
		Types:  types,
		Colors: colors.Map(e.env.Colors),
		Times:  times,
		Leds:   Legend(),
	}
}

// Legend returns the letters of every grid row keyed by display.RowKey, plus
// the indicator row placed under the middle columns.
func Legend() map[string]string {
	leds := make(map[string]string, display.Height+1)
	for row := range display.Height {
		start := row * display.Width
		leds[display.RowKey(row)] = strings.ToUpper(timedef.Layout[start : start+display.Width])
	}
	leds[display.IndicatorKey] = strings.Repeat(" ", 3) +
		strings.Repeat(string(indicatorGlyph), display.Indicators)
	return leds
}

// Live returns what the grid currently shows and the active chain.
func (e *Engine) Live() models.LiveResponse {
	snap := e.grid.Snapshot()
	out := models.LiveResponse{
		Text:        make(map[string]string, display.Height+1),
		Colors:      make(map[string]string, display.Height+1),
		ActiveModes: e.env.Chain(),
		Time:        models.LiveTime{Hours: e.env.Hours(), Minutes: e.env.Minutes()},
		Brightness:  snap.Brightness,
	}

	for row := range display.Height {
		text := make([]byte, display.Width)
		keys := make([]byte, display.Width)
		for col, c := range snap.Pixels[row] {
			text[col], keys[col] = ' ', ' '
			if c != colors.Off {
				text[col] = timedef.Layout[row*display.Width+col]
				keys[col] = colors.Key(c)[0]
			}
		}
		out.Text[display.RowKey(row)] = string(text)
		out.Colors[display.RowKey(row)] = string(keys)
	}

	text := make([]byte, display.Indicators)
	keys := make([]byte, display.Indicators)
	for i, c := range snap.Indicators {
		text[i], keys[i] = ' ', ' '
		if c != colors.Off {
			text[i] = indicatorGlyph
			keys[i] = colors.Key(c)[0]
		}
	}
	out.Text[display.IndicatorKey] = string(text)
	out.Colors[display.IndicatorKey] = string(keys)
	return out
}
