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

package hub

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type managerMetrics struct {
	operations *prometheus.CounterVec
}

func (m *Manager) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.metrics = &managerMetrics{
		operations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_operations_total",
				Help: "hub operations by name and result",
			},
			[]string{"op", "result"},
		),
	}
}

func (m *Manager) observe(op string, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDuplicateRecord):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFieldTooLong), errors.Is(err, ErrFieldEmpty),
		errors.Is(err, ErrFieldInvalid):
		return "invalid_field"
	case errors.Is(err, ErrInvalidSubscription):
		return "invalid_subscription"
	default:
		return "error"
	}
}
