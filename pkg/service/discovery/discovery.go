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

// Package discovery advertises the HTTP API over mDNS so phones and home
// automation can find the clock without knowing its address.
package discovery

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
)

const (
	ServiceType = "_wordclock._tcp"
	Domain      = "local."
	APIPath     = "/api"

	retryInterval    = 30 * time.Second
	maxRetryDuration = 5 * time.Minute
)

var virtualInterfacePrefixes = []string{
	"docker", "br-", "veth", "virbr", "lxc", "lxd",
	"cni", "flannel", "cali", "tunl", "wg",
}

// Settings is the part of the config the advertiser reads.
type Settings interface {
	DiscoveryEnabled() bool
	DiscoveryInstanceName() string
	DeviceID() string
	APIPort() int
}

func filterInterfaces(ifaces []net.Interface) []net.Interface {
	var preferred []net.Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 ||
			iface.Flags&net.FlagLoopback != 0 ||
			iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		if isVirtualInterface(iface.Name) {
			continue
		}
		preferred = append(preferred, iface)
	}
	return preferred
}

func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Service owns the zeroconf registration. Registration is retried in the
// background for a while when no network is up yet at boot.
type Service struct {
	server       *zeroconf.Server
	cfg          Settings
	clock        clockwork.Clock
	cancelFunc   context.CancelFunc
	hostname     func() (string, error)
	interfaces   func() ([]net.Interface, error)
	register     func(instance string, port int, txt []string, ifaces []net.Interface) (*zeroconf.Server, error)
	instanceName string
	stopped      bool
	mu           syncutil.Mutex
}

func New(cfg Settings, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		cfg:        cfg,
		clock:      clock,
		hostname:   os.Hostname,
		interfaces: net.Interfaces,
		register: func(instance string, port int, txt []string, ifaces []net.Interface) (*zeroconf.Server, error) {
			return zeroconf.Register(instance, ServiceType, Domain, port, txt, ifaces)
		},
	}
}

// Start registers the service. Failing to register is not an error; a
// retry loop takes over until maxRetryDuration passes.
func (s *Service) Start() error {
	if !s.cfg.DiscoveryEnabled() {
		log.Info().Msg("mDNS discovery disabled by configuration")
		return nil
	}

	s.mu.Lock()
	s.instanceName = s.resolveInstanceName()
	s.mu.Unlock()

	if s.tryRegister() {
		return nil
	}

	log.Info().
		Dur("retryInterval", retryInterval).
		Dur("maxDuration", maxRetryDuration).
		Msg("mDNS registration failed, retrying in background")

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		cancel()
		return nil
	}
	s.cancelFunc = cancel
	s.mu.Unlock()

	go s.retryLoop(ctx)
	return nil
}

// TXT returns the TXT records advertised alongside the service.
func (s *Service) TXT() []string {
	return []string{
		"id=" + s.cfg.DeviceID(),
		"path=" + APIPath,
		"port=" + strconv.Itoa(s.cfg.APIPort()),
	}
}

func (s *Service) tryRegister() bool {
	all, err := s.interfaces()
	if err != nil {
		log.Debug().Err(err).Msg("failed to list network interfaces")
		return false
	}
	ifaces := filterInterfaces(all)
	if len(ifaces) == 0 {
		log.Debug().Msg("no network interfaces suitable for mDNS")
		return false
	}

	names := make([]string, len(ifaces))
	for i, iface := range ifaces {
		names[i] = iface.Name
	}

	s.mu.Lock()
	instance := s.instanceName
	s.mu.Unlock()

	port := s.cfg.APIPort()
	server, err := s.register(instance, port, s.TXT(), ifaces)
	if err != nil {
		log.Debug().Err(err).Msg("mDNS registration attempt failed")
		return false
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		if server != nil {
			server.Shutdown()
		}
		return false
	}
	s.server = server
	s.mu.Unlock()

	log.Info().
		Str("instance", instance).
		Int("port", port).
		Strs("interfaces", names).
		Msg("mDNS advertising started")
	return true
}

func (s *Service) retryLoop(ctx context.Context) {
	ticker := s.clock.NewTicker(retryInterval)
	defer ticker.Stop()
	deadline := s.clock.After(maxRetryDuration)

	for {
		select {
		case <-ticker.Chan():
			if s.tryRegister() {
				log.Info().Msg("mDNS registration succeeded after retry")
				return
			}
		case <-deadline:
			log.Warn().Msg("mDNS registration retry timed out, discovery unavailable")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop sends goodbye packets and ends any retry loop. Safe to call more
// than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	if s.server != nil {
		log.Debug().Msg("stopping mDNS advertising")
		s.server.Shutdown()
		s.server = nil
	}
}

func (s *Service) InstanceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanceName
}

// resolveInstanceName prefers the configured name, then the hostname, then
// a name derived from the device id.
func (s *Service) resolveInstanceName() string {
	if name := s.cfg.DiscoveryInstanceName(); name != "" {
		return name
	}
	hostname, err := s.hostname()
	if err == nil && hostname != "" {
		return hostname
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to get hostname, using fallback")
	}
	id := s.cfg.DeviceID()
	if len(id) >= 8 {
		return "wordclock-" + id[:8]
	}
	return "wordclock"
}
