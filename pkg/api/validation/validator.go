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

// Package validation checks API request parameters, mode documents and
// config sections using go-playground/validator with a few clock-specific
// tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingParams = errors.New("missing params")
	ErrInvalidParams = errors.New("invalid params")
)

// Slot references run from -1 (off) to the last of the 16 slots.
const (
	minSlotRef = -1
	maxSlotRef = 15
)

type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom tags:
//
//	slotref  int in -1..15, a mode slot or off
//	duration positive time.ParseDuration string, empty allowed
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slotref", validateSlotRef)
	_ = v.RegisterValidation("duration", validateDuration)
	return &Validator{validate: v}
}

var DefaultValidator = NewValidator()

// Validate returns an *Error describing every failed field.
func (v *Validator) Validate(params any) error {
	if err := v.validate.Struct(params); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewError(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// ValidateAndUnmarshal decodes params into dest and validates it. An empty
// body gives ErrMissingParams and bad JSON ErrInvalidParams wrapping the
// parser message.
func ValidateAndUnmarshal[T any](params json.RawMessage, dest *T) error {
	if len(params) == 0 {
		return ErrMissingParams
	}
	if err := json.Unmarshal(params, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return DefaultValidator.Validate(dest)
}

func validateSlotRef(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= minSlotRef && n <= maxSlotRef
}

func validateDuration(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	d, err := time.ParseDuration(val)
	return err == nil && d > 0
}
