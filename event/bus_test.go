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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishAsyncDelivers(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Stop()
	typ := EventType("async.test")
	_, ch := eb.Subscribe(typ)
	require.True(t, eb.PublishAsync(typ, NewEvent(typ, "hello")))
	select {
	case evt := <-ch:
		assert.Equal(t, "hello", evt.Data)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for async event")
	}
}

func TestStopRestartsAsyncWorkers(t *testing.T) {
	eb := NewEventBus(nil, nil)
	typ := EventType("async.restart")
	require.True(t, eb.PublishAsync(typ, NewEvent(typ, 1)))
	eb.Stop()

	_, ch := eb.Subscribe(typ)
	require.True(t, eb.PublishAsync(typ, NewEvent(typ, 2)))
	select {
	case evt := <-ch:
		assert.Equal(t, 2, evt.Data)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for async event after Stop")
	}
	eb.Stop()
}

func TestEventMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := NewEventBus(reg, nil)
	defer eb.Stop()
	typ := EventType("metrics.test")
	_, _ = eb.Subscribe(typ)
	eb.RegisterSubscriber(typ, &failingSubscriber{})

	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(
			eb.metrics.subscribers.WithLabelValues(string(typ), "in-memory"),
		),
		0,
	)
	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(
			eb.metrics.subscribers.WithLabelValues(string(typ), "remote"),
		),
		0,
	)

	eb.Publish(typ, NewEvent(typ, "x"))

	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(eb.metrics.eventsTotal.WithLabelValues(string(typ))),
		0,
	)
	// The failing mock subscriber is removed
	assert.InDelta(
		t,
		1,
		testutil.ToFloat64(
			eb.metrics.deliveryErrors.WithLabelValues(string(typ), "remote"),
		),
		0,
	)
	assert.Equal(t, 1, eb.SubscriberCount(typ))
}

type panicSubscriber struct {
	closed bool
}

func (p *panicSubscriber) Deliver(Event) error {
	panic("boom")
}

func (p *panicSubscriber) Close() {
	p.closed = true
}

func TestDeliverPanicUnregisters(t *testing.T) {
	eb := NewEventBus(nil, nil)
	typ := EventType("panic.deliver")
	sub := &panicSubscriber{}
	eb.RegisterSubscriber(typ, sub)
	_, ch := eb.Subscribe(typ)

	require.NotPanics(t, func() {
		eb.Publish(typ, NewEvent(typ, "x"))
	})
	assert.True(t, sub.closed)
	assert.Equal(t, 1, eb.SubscriberCount(typ))
	select {
	case <-ch:
	default:
		t.Fatal("healthy subscriber did not receive event")
	}
	eb.Stop()
}

func TestStopResetsSubscriberGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := NewEventBus(reg, nil)
	typ := EventType("metrics.stop")
	_, _ = eb.Subscribe(typ)
	_, _ = eb.Subscribe(typ)
	gauge := eb.metrics.subscribers.WithLabelValues(string(typ), "in-memory")
	assert.InDelta(t, 2, testutil.ToFloat64(gauge), 0)
	eb.Stop()
	assert.InDelta(t, 0, testutil.ToFloat64(gauge), 0)
	assert.Equal(t, 0, eb.SubscriberCount(typ))
}
