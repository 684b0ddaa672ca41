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

package config

import (
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultAPIPort      = 8080
	DefaultTickInterval = 50 * time.Millisecond
	DefaultMaxLoopDelay = time.Second
	DefaultStoreFile    = "wordclock.eeprom"
	DefaultBoltFile     = "wordclock.db"
	DefaultSQLiteFile   = "wordclock.sqlite"
	DefaultWebRoot      = "web"

	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type API struct {
	Port           *int     `toml:"port,omitempty"`
	Listen         string   `toml:"listen,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	// RateLimit is the sustained number of requests per second allowed
	// from one client. Zero uses the default.
	RateLimit int `toml:"rate_limit,omitempty" validate:"gte=0"`
	// WebRoot is the directory holding the web client. Relative paths
	// resolve against the config directory.
	WebRoot string `toml:"web_root,omitempty"`
}

type Store struct {
	Backend string `toml:"backend" validate:"omitempty,oneof=file bolt sqlite memory"`
	Path    string `toml:"path,omitempty"`
}

// Engine durations are written the way time.ParseDuration reads them,
// e.g. "50ms".
type Engine struct {
	TickInterval string `toml:"tick_interval,omitempty" validate:"duration"`
	MaxLoopDelay string `toml:"max_loop_delay,omitempty" validate:"duration"`
}

type Discovery struct {
	Enabled      *bool  `toml:"enabled,omitempty"`
	InstanceName string `toml:"instance_name,omitempty"`
}

type MQTTPublisher struct {
	Enabled *bool    `toml:"enabled,omitempty"`
	Broker  string   `toml:"broker"`
	Topic   string   `toml:"topic"`
	Filter  []string `toml:"filter,omitempty"`
}

type Publishers struct {
	MQTT []MQTTPublisher `toml:"mqtt,omitempty"`
}

// Output is the LED controller on a serial line. An empty serial port
// picks the first USB serial device.
type Output struct {
	SerialPort string `toml:"serial_port,omitempty"`
	BaudRate   int    `toml:"baud_rate,omitempty" validate:"gte=0"`
	Enabled    bool   `toml:"enabled"`
}

// ErrorReporting sends error level log events to a Sentry compatible
// endpoint. Off unless enabled and a DSN is given.
type ErrorReporting struct {
	DSN         string `toml:"dsn,omitempty"`
	Environment string `toml:"environment,omitempty"`
	Enabled     bool   `toml:"enabled"`
}

// parseDuration reads an engine duration. Values are validated on load, so
// anything unreadable falls back.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiPortLocked()
}

// apiPortLocked returns the API port. Caller must hold mu.
func (c *Instance) apiPortLocked() int {
	if c.vals.API.Port == nil {
		return DefaultAPIPort
	}
	return *c.vals.API.Port
}

func (c *Instance) SetAPIPort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.API.Port = &port
}

func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.Listen == "" {
		return ":" + strconv.Itoa(c.apiPortLocked())
	}
	return c.vals.API.Listen
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.AllowedOrigins
}

func (c *Instance) RateLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.API.RateLimit
}

func (c *Instance) WebRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolveLocked(c.vals.API.WebRoot, DefaultWebRoot)
}

// resolveLocked returns path, or fallback when empty, made absolute against
// the config directory. Caller must hold mu.
func (c *Instance) resolveLocked(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(c.cfgPath), path)
}

func (c *Instance) StoreBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Store.Backend == "" {
		return BackendFile
	}
	return c.vals.Store.Backend
}

// StorePath returns where the durable record lives. Relative paths resolve
// against the config directory.
func (c *Instance) StorePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fallback := DefaultStoreFile
	switch c.vals.Store.Backend {
	case BackendBolt:
		fallback = DefaultBoltFile
	case BackendSQLite:
		fallback = DefaultSQLiteFile
	}
	return c.resolveLocked(c.vals.Store.Path, fallback)
}

func (c *Instance) TickInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Engine.TickInterval, DefaultTickInterval)
}

func (c *Instance) MaxLoopDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return parseDuration(c.vals.Engine.MaxLoopDelay, DefaultMaxLoopDelay)
}

func (c *Instance) DiscoveryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Discovery.Enabled == nil {
		return true
	}
	return *c.vals.Discovery.Enabled
}

func (c *Instance) SetDiscoveryEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Discovery.Enabled = &enabled
}

func (c *Instance) DiscoveryInstanceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Discovery.InstanceName
}

// MQTTPublishers returns the enabled MQTT publishers. Entries without an
// enabled key count as enabled.
func (c *Instance) MQTTPublishers() []MQTTPublisher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]MQTTPublisher, 0, len(c.vals.Publishers.MQTT))
	for _, p := range c.vals.Publishers.MQTT {
		if p.Enabled != nil && !*p.Enabled {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting.Enabled && c.vals.ErrorReporting.DSN != ""
}

func (c *Instance) ErrorReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting.DSN
}

func (c *Instance) ErrorReportingEnvironment() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.ErrorReporting.Environment == "" {
		return "production"
	}
	return c.vals.ErrorReporting.Environment
}

func (c *Instance) OutputEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.Enabled
}

func (c *Instance) OutputSerialPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.SerialPort
}

func (c *Instance) OutputBaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.BaudRate
}
