// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"io"
	"log/slog"
	"sync"
)

// Subscriber receives events from the bus. Deliver must not block, and
// an error from it removes the subscriber. Close may be called more than
// once.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

// channelSubscriber backs Subscribe. Events that do not fit in the
// buffer are dropped.
type channelSubscriber struct {
	ch     chan Event
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int, logger *slog.Logger) *channelSubscriber {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &channelSubscriber{
		ch:     make(chan Event, buffer),
		logger: logger,
	}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	// Close takes the write lock, so the channel stays open for the send
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
	default:
		c.logger.Warn(
			"subscriber queue full, dropping event",
			"type", evt.Type,
		)
	}
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// subscriberKind is the metrics label for sub
func subscriberKind(sub Subscriber) string {
	switch sub.(type) {
	case *channelSubscriber:
		return "in-memory"
	default:
		return "remote"
	}
}
