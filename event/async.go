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
	"sync"
)

type asyncEvent struct {
	eventType EventType
	event     Event
}

// asyncPool is a fixed set of workers draining a bounded queue into
// Publish. A stopped pool is discarded and a new one built on demand.
type asyncPool struct {
	queue chan asyncEvent
	done  chan struct{}
	wg    sync.WaitGroup
}

func newAsyncPool(publish func(EventType, Event)) *asyncPool {
	p := &asyncPool{
		queue: make(chan asyncEvent, AsyncQueueSize),
		done:  make(chan struct{}),
	}
	p.wg.Add(AsyncWorkerPoolSize)
	for range AsyncWorkerPoolSize {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.done:
					return
				case ae := <-p.queue:
					publish(ae.eventType, ae.event)
				}
			}
		}()
	}
	return p
}

// enqueue reports whether ae fit in the queue
func (p *asyncPool) enqueue(ae asyncEvent) bool {
	select {
	case p.queue <- ae:
		return true
	default:
		return false
	}
}

// stop waits for the workers to exit. Queued events are discarded.
func (p *asyncPool) stop() {
	close(p.done)
	p.wg.Wait()
}

// PublishAsync queues evt for delivery by the worker pool and returns
// immediately. It returns false, and drops the event, when the queue is
// full.
func (e *EventBus) PublishAsync(eventType EventType, evt Event) bool {
	e.lifecycleMu.Lock()
	if e.async == nil {
		e.async = newAsyncPool(e.Publish)
	}
	pool := e.async
	e.lifecycleMu.Unlock()

	if pool.enqueue(asyncEvent{eventType: eventType, event: evt}) {
		return true
	}
	e.Logger.Warn(
		"async event queue full, dropping event",
		"type", eventType,
	)
	if e.metrics != nil {
		e.metrics.deliveryErrors.WithLabelValues(
			string(eventType),
			"async-dropped",
		).Inc()
	}
	return false
}
