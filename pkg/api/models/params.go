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

package models

import "encoding/json"

type FixedTimeParams struct {
	Enabled bool `json:"enabled"`
	Hours   int  `json:"hours" validate:"min=0,max=23"`
	Minutes int  `json:"minutes" validate:"min=0,max=59"`
}

// ModesPatchParams is the body of PATCH /api/modes. Each entry of Modes is a
// mode object carrying an index and any fields to change; entries are
// applied independently.
type ModesPatchParams struct {
	FixedTime *FixedTimeParams  `json:"fixedTime" validate:"-"`
	Current   *int              `json:"current"`
	Flash     *bool             `json:"flash"`
	Modes     []json.RawMessage `json:"modes"`
}

type ResetParams struct {
	Data   *bool `json:"data"`
	Wifi   *bool `json:"wifi"`
	Reboot *bool `json:"reboot"`
}
