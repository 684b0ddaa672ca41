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

// Package broker fans notifications from the scheduler out to websocket and
// MQTT consumers. Sends never block the producer.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/api/models"
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
)

type Broker struct {
	ctx         context.Context
	source      <-chan models.Notification
	subscribers map[int]chan models.Notification
	done        chan struct{}
	mu          syncutil.RWMutex
	nextID      int
}

func NewBroker(ctx context.Context, source <-chan models.Notification) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan models.Notification),
		done:        make(chan struct{}),
	}
}

// Start runs the fan-out loop until the source closes or the context ends.
// All subscriber channels are closed on the way out.
func (b *Broker) Start() {
	go func() {
		defer close(b.done)
		defer b.closeAll()
		for {
			select {
			case n, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source closed")
					return
				}
				b.broadcast(n)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context done")
				return
			}
		}
	}()
}

// Done is closed once the loop started by Start has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) broadcast(n models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", n.Method).
				Msg("subscriber full, dropping notification")
		}
	}
}

// Subscribe registers a consumer. A subscriber that falls more than
// bufferSize notifications behind misses the overflow.
func (b *Broker) Subscribe(bufferSize int) (notifChan <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++
	ch := make(chan models.Notification, bufferSize)
	b.subscribers[id] = ch
	log.Debug().Int("subscriber_id", id).Int("buffer_size", bufferSize).Msg("subscriber added")
	return ch, id
}

// Unsubscribe closes the consumer's channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber removed")
	}
}

func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		log.Debug().Int("subscriber_id", id).Msg("subscriber closed on shutdown")
	}
	b.subscribers = make(map[int]chan models.Notification)
}

// Send encodes payload as the notification params and queues it on ns
// without blocking. A full queue drops the notification.
func Send(ns chan<- models.Notification, method string, payload any) error {
	params, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s notification: %w", method, err)
	}
	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification queue full, dropping")
	}
	return nil
}
