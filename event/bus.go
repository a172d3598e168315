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
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type EventBus struct {
	Logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[EventType]map[EventSubscriberId]Subscriber
	lastSubId   EventSubscriberId
	metrics     *eventMetrics

	// lifecycleMu guards the async pool and orders SubscribeFunc against
	// Stop
	lifecycleMu sync.Mutex
	async       *asyncPool
	handlerWg   sync.WaitGroup
}

// NewEventBus returns a bus ready for use. Metrics are only registered
// when promRegistry is non-nil.
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]Subscriber),
		Logger:      logger,
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

func (e *EventBus) subscriberGauge(eventType EventType, sub Subscriber, delta float64) {
	if e.metrics == nil {
		return
	}
	e.metrics.subscribers.WithLabelValues(
		string(eventType),
		subscriberKind(sub),
	).Add(delta)
}

// RegisterSubscriber adds sub for eventType and returns its id. This is
// how remote forwarders attach to the bus.
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSubId++
	subs, ok := e.subscribers[eventType]
	if !ok {
		subs = make(map[EventSubscriberId]Subscriber)
		e.subscribers[eventType] = subs
	}
	subs[e.lastSubId] = sub
	e.subscriberGauge(eventType, sub, 1)
	return e.lastSubId
}

// Subscribe returns a buffered channel of events of eventType. The channel
// is closed by Unsubscribe or Stop.
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	sub := newChannelSubscriber(EventQueueSize, e.Logger)
	return e.RegisterSubscriber(eventType, sub), sub.ch
}

// SubscribeFunc runs handlerFunc on its own goroutine for every event of
// eventType. A panicking handler is logged and keeps receiving events.
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	subId, evtCh := e.Subscribe(eventType)
	e.handlerWg.Add(1)
	go func() {
		defer e.handlerWg.Done()
		for evt := range evtCh {
			e.callHandler(handlerFunc, evt)
		}
	}()
	return subId
}

func (e *EventBus) callHandler(handlerFunc EventHandlerFunc, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error(
				"event handler panic",
				"type", evt.Type,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	handlerFunc(evt)
}

// Unsubscribe removes and closes a subscriber. Unknown ids are ignored.
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	sub, ok := e.subscribers[eventType][subId]
	if ok {
		delete(e.subscribers[eventType], subId)
		if len(e.subscribers[eventType]) == 0 {
			delete(e.subscribers, eventType)
		}
		e.subscriberGauge(eventType, sub, -1)
	}
	e.mu.Unlock()
	if ok {
		sub.Close()
	}
}

func (e *EventBus) SubscriberCount(eventType EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers[eventType])
}

// deliver hands evt to sub, turning a panic into an error
func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Publish delivers evt synchronously to every subscriber of eventType.
// Subscribers that fail are removed.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	targets := make(map[EventSubscriberId]Subscriber, len(e.subscribers[eventType]))
	for id, sub := range e.subscribers[eventType] {
		targets[id] = sub
	}
	e.mu.RUnlock()

	for id, sub := range targets {
		err := deliver(sub, evt)
		if err == nil {
			continue
		}
		e.Unsubscribe(eventType, id)
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(
				string(eventType),
				subscriberKind(sub),
			).Inc()
		}
		e.Logger.Warn(
			"event delivery error, removing subscriber",
			"type", eventType,
			"error", err,
		)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// Stop drops any queued async events, closes every subscriber and waits
// for SubscribeFunc handlers to drain. The bus remains usable afterwards.
func (e *EventBus) Stop() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.async != nil {
		e.async.stop()
		e.async = nil
	}

	e.mu.Lock()
	old := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]Subscriber)
	for eventType, subs := range old {
		for _, sub := range subs {
			e.subscriberGauge(eventType, sub, -1)
		}
	}
	e.mu.Unlock()

	for _, subs := range old {
		for _, sub := range subs {
			sub.Close()
		}
	}
	e.handlerWg.Wait()
}
