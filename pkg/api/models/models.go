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

// Package models holds the request, response and notification types of the
// HTTP API.
package models

import (
	"encoding/json"
)

const (
	NotificationModesChanged = "modes.changed"
	NotificationLiveChanged  = "live.changed"
)

// Notification is pushed to websocket clients.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
