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

// Package notify forwards event bus events to Redis pub/sub channels
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blinklabs-io/hubd/event"
)

const (
	DefaultChannelPrefix  = "hubd:"
	DefaultQueueSize      = 1000
	DefaultPublishTimeout = 5 * time.Second
)

type Config struct {
	Logger *slog.Logger
	// Client is used as-is when set, otherwise a client for Addr is created
	// and closed along with the forwarder
	Client         *redis.Client
	Addr           string
	ChannelPrefix  string
	QueueSize      int
	PublishTimeout time.Duration
}

// Forwarder is an event.Subscriber that publishes each delivered event as
// JSON to the Redis channel named by the prefix and the event type.
// Delivery never blocks the event bus: events are queued and published by a
// background goroutine, and dropped when the queue is full.
type Forwarder struct {
	client         *redis.Client
	ownsClient     bool
	logger         *slog.Logger
	channelPrefix  string
	publishTimeout time.Duration
	queue          chan event.Event
	mu             sync.RWMutex
	closed         bool
	wg             sync.WaitGroup
}

// NewForwarder connects to Redis and starts the publish worker
func NewForwarder(ctx context.Context, cfg Config) (*Forwarder, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultChannelPrefix
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	f := &Forwarder{
		client:         cfg.Client,
		logger:         cfg.Logger.With("component", "notify"),
		channelPrefix:  cfg.ChannelPrefix,
		publishTimeout: cfg.PublishTimeout,
		queue:          make(chan event.Event, cfg.QueueSize),
	}
	if f.client == nil {
		if cfg.Addr == "" {
			return nil, errors.New("redis address must be provided")
		}
		f.client = redis.NewClient(&redis.Options{Addr: cfg.Addr})
		f.ownsClient = true
	}
	if err := f.client.Ping(ctx).Err(); err != nil {
		if f.ownsClient {
			_ = f.client.Close()
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	f.wg.Add(1)
	go f.run()
	return f, nil
}

// Register subscribes the forwarder to each of the given event types
func (f *Forwarder) Register(
	eventBus *event.EventBus,
	eventTypes ...event.EventType,
) {
	for _, eventType := range eventTypes {
		eventBus.RegisterSubscriber(eventType, f)
	}
}

// Channel returns the Redis channel used for eventType
func (f *Forwarder) Channel(eventType event.EventType) string {
	return f.channelPrefix + string(eventType)
}

func (f *Forwarder) Deliver(evt event.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil
	}
	select {
	case f.queue <- evt:
	default:
		f.logger.Warn(
			"redis forward queue full, dropping event",
			"type", evt.Type,
		)
	}
	return nil
}

// Close stops accepting events, publishes those already queued and releases
// the Redis client if the forwarder created it. It is safe to call more
// than once.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()
	f.wg.Wait()
	if f.ownsClient {
		if err := f.client.Close(); err != nil {
			f.logger.Debug("failed to close redis client", "error", err)
		}
	}
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for evt := range f.queue {
		if err := f.publish(evt); err != nil {
			f.logger.Error(
				"failed to forward event",
				"type", evt.Type,
				"error", err,
			)
		}
	}
}

func (f *Forwarder) publish(evt event.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(
		context.Background(),
		f.publishTimeout,
	)
	defer cancel()
	return f.client.Publish(ctx, f.Channel(evt.Type), payload).Err()
}
