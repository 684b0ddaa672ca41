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

// Package publishers forwards clock notifications to external systems.
package publishers

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api/models"
)

const publishTimeout = 5 * time.Second

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTPublisher mirrors notifications to an MQTT broker. Each method gets
// its own retained subtopic so a late subscriber sees the latest state,
// e.g. "wordclock/hall/live.changed".
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	broker    string
	topic     string
	filter    []string
}

// NewMQTTPublisher creates a publisher. An empty filter publishes every
// notification.
func NewMQTTPublisher(broker, topic string, filter []string) *MQTTPublisher {
	return &MQTTPublisher{
		broker:    broker,
		topic:     strings.TrimSuffix(topic, "/"),
		filter:    filter,
		newClient: mqtt.NewClient,
	}
}

func (p *MQTTPublisher) Broker() string {
	return p.broker
}

// Start connects to the broker. The client reconnects on its own after a
// lost connection.
func (p *MQTTPublisher) Start() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + p.broker)
	opts.SetClientID("wordclock-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Msgf("mqtt publisher: connected to %s", p.broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt publisher: connection lost")
	}

	p.client = p.newClient(opts)
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func (p *MQTTPublisher) Stop() {
	if p.client != nil && p.client.IsConnected() {
		log.Debug().Msg("mqtt publisher: disconnecting")
		p.client.Disconnect(250)
	}
}

// Topic returns the topic a notification method is published on.
func (p *MQTTPublisher) Topic(method string) string {
	return p.topic + "/" + method
}

// Publish sends the notification params as the message payload. Filtered
// out notifications are ignored.
func (p *MQTTPublisher) Publish(n models.Notification) error {
	if !p.matchesFilter(n.Method) {
		return nil
	}
	if p.client == nil {
		return errors.New("mqtt publisher not started")
	}

	payload := []byte(n.Params)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	token := p.client.Publish(p.Topic(n.Method), 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", n.Method, err)
	}
	log.Debug().Msgf("mqtt publisher: published %s", n.Method)
	return nil
}

func (p *MQTTPublisher) matchesFilter(method string) bool {
	return len(p.filter) == 0 || slices.Contains(p.filter, method)
}
