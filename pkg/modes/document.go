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

package modes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wordclock/wordclock-core/pkg/api/validation"
	"github.com/wordclock/wordclock-core/pkg/colors"
)

var (
	ErrWrongKind    = errors.New("configuration does not match handler kind")
	ErrInvalidField = errors.New("invalid field")
	ErrUnknownColor = errors.New("unknown color")
)

// Document is an outgoing JSON object node.
type Document map[string]any

// Fields is an incoming JSON object whose values are decoded lazily, so a
// merge can tell absent keys from zero values.
type Fields map[string]json.RawMessage

// Present reports whether key is set to something other than null.
func (f Fields) Present(key string) bool {
	raw, ok := f[key]
	if !ok {
		return false
	}
	return strings.TrimSpace(string(raw)) != "null"
}

// Decode unmarshals key into v. It reports false without error when the key
// is absent or null.
func (f Fields) Decode(key string, v any) (bool, error) {
	if !f.Present(key) {
		return false, nil
	}
	if err := json.Unmarshal(f[key], v); err != nil {
		return true, fmt.Errorf("%w %q: %w", ErrInvalidField, key, err)
	}
	return true, nil
}

// DecodeColor reads a palette reference given either as a color name or as
// an index.
func (f Fields) DecodeColor(key string, table colors.Table) (uint8, bool, error) {
	if !f.Present(key) {
		return 0, false, nil
	}
	idx, err := ParseColor(f[key], table)
	if err != nil {
		return 0, true, fmt.Errorf("%w %q: %w", ErrInvalidField, key, err)
	}
	return idx, true, nil
}

// ParseColor resolves a raw JSON color reference against table.
func ParseColor(raw json.RawMessage, table colors.Table) (uint8, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		idx, ok := table.Index(name)
		if !ok {
			if hint := colors.Suggest(table, name); hint != "" {
				return 0, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownColor, name, hint)
			}
			return 0, fmt.Errorf("%w: %s", ErrUnknownColor, name)
		}
		return idx, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("color must be a name or an index: %w", err)
	}
	if n < 0 || n >= len(table.All()) {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownColor, n)
	}
	return uint8(n), nil //nolint:gosec // bounded by palette size
}

func validateDoc(v any) error {
	if err := validation.DefaultValidator.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidField, err)
	}
	return nil
}

func schemaInt(minVal, maxVal int) Document {
	return Document{"type": "int", "min": minVal, "max": maxVal}
}

func schemaColor() Document {
	return Document{"type": "color"}
}

func schemaMode() Document {
	return Document{"type": "mode", "off": OffIndex, "max": SlotCount - 1}
}

func schemaList(maxLen int, item Document) Document {
	return Document{"type": "list", "max": maxLen, "item": item}
}

// BaseToDocument writes the name and appearance of cfg into data.
func BaseToDocument(cfg Config, env *Env, data, schema Document) {
	if name, ok := AsNamed(cfg); ok {
		data["name"] = *name
		schema["name"] = Document{"type": "string"}
	}
	if look, ok := AsColored(cfg); ok {
		data["color"] = env.Colors.Name(look.Color)
		data["brightness"] = look.Brightness
		schema["color"] = schemaColor()
		schema["brightness"] = schemaInt(0, int(MaxBrightness))
	}
}

// BaseFromDocument merges name, color and brightness. Nothing is changed
// when any of them is invalid.
func BaseFromDocument(cfg Config, env *Env, doc Fields) error {
	var name string
	hasName, err := doc.Decode("name", &name)
	if err != nil {
		return err
	}
	color, hasColor, err := doc.DecodeColor("color", env.Colors)
	if err != nil {
		return err
	}
	var brightness int
	hasBrightness, err := doc.Decode("brightness", &brightness)
	if err != nil {
		return err
	}
	if hasBrightness && (brightness < 0 || brightness > int(MaxBrightness)) {
		return fmt.Errorf("%w: brightness %d", ErrInvalidField, brightness)
	}

	if n, ok := AsNamed(cfg); ok && hasName {
		if i := strings.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		*n = name
	}
	if look, ok := AsColored(cfg); ok {
		if hasColor {
			look.Color = color
		}
		if hasBrightness {
			look.Brightness = uint8(brightness)
		}
	}
	return nil
}
