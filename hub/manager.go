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
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/event"
)

const tracerName = "github.com/blinklabs-io/hubd/hub"

type ManagerConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Clock        Clock
	// IndexReleases appends a content index entry when a release is added
	// to a hub
	IndexReleases bool
}

// Manager creates and mutates hub relationships. Mutating operations are
// applied one at a time, each in its own transaction. Queries may run
// concurrently with each other and with a mutation.
type Manager struct {
	config   ManagerConfig
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	clock    Clock
	tracer   trace.Tracer
	metrics  *managerMetrics
	registry *Registry
	content  *ContentIndex
	writeMu  sync.Mutex
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Database == nil {
		return nil, errors.New("database must be provided")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	m := &Manager{
		config:   cfg,
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger.With("component", "hub"),
		clock:    cfg.Clock,
		tracer:   otel.Tracer(tracerName),
		registry: NewRegistry(cfg.Database),
		content:  NewContentIndex(cfg.Database),
	}
	if cfg.PromRegistry != nil {
		m.initMetrics(cfg.PromRegistry)
	}
	return m, nil
}

// Registry returns the membership registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ContentIndex returns the content index
func (m *Manager) ContentIndex() *ContentIndex {
	return m.content
}

// now returns the current time in unix seconds
func (m *Manager) now() int64 {
	return m.clock.Now().Unix()
}

// update runs fn in a read-write transaction while holding the writer lock.
// The transaction is rolled back if fn returns an error.
func (m *Manager) update(
	ctx context.Context,
	op string,
	fn func(*database.Txn) error,
) error {
	ctx, span := m.tracer.Start(ctx, "hub."+op)
	defer span.End()
	err := m.runUpdate(ctx, fn)
	m.observe(op, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Debug(
			"operation failed",
			"op", op,
			"error", err,
		)
	}
	return err
}

func (m *Manager) runUpdate(
	ctx context.Context,
	fn func(*database.Txn) error,
) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Transaction(true)
	return txn.Do(fn)
}

// view runs fn against a read-only blob transaction. Metadata queries made
// from fn must pass a nil transaction.
func (m *Manager) view(
	ctx context.Context,
	op string,
	fn func(*database.Txn) error,
) error {
	return m.runView(ctx, op, false, fn)
}

// viewIndex runs fn against a read-only transaction spanning both stores so
// several index queries observe the same metadata snapshot
func (m *Manager) viewIndex(
	ctx context.Context,
	op string,
	fn func(*database.Txn) error,
) error {
	return m.runView(ctx, op, true, fn)
}

func (m *Manager) runView(
	ctx context.Context,
	op string,
	withMetadata bool,
	fn func(*database.Txn) error,
) error {
	ctx, span := m.tracer.Start(ctx, "hub."+op)
	defer span.End()
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := database.NewBlobOnlyTxn(m.db, false)
	if withMetadata {
		txn = database.NewTxn(m.db, false)
	}
	defer txn.Release()
	err := fn(txn)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (m *Manager) emit(eventType event.EventType, data any) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
