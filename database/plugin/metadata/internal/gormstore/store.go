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

// Package gormstore holds the metadata queries shared by the gorm-backed
// metadata plugins
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/blinklabs-io/hubd/database/models"
	"github.com/blinklabs-io/hubd/database/types"
)

// Store implements the metadata queries on top of a gorm connection
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// GormConfig returns the gorm configuration used by all dialects
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// New configures tracing on the connection and migrates the schema
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Store{
		db:     db,
		logger: logger,
	}
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	// Create table schemas
	s.logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := s.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return nil, err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RegisterMetrics exposes connection pool statistics for the store
func (s *Store) RegisterMetrics(
	registry prometheus.Registerer,
	dialect string,
) {
	if registry == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		s.logger.Warn(
			"unable to register metadata metrics",
			"error", err,
		)
		return
	}
	promauto.With(registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "hubd_metadata_open_connections",
			Help:        "Number of open metadata store connections",
			ConstLabels: prometheus.Labels{"dialect": dialect},
		},
		func() float64 {
			return float64(sqlDB.Stats().OpenConnections)
		},
	)
}

// DB returns the underlying GORM database handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction begins a new metadata transaction
func (s *Store) Transaction() types.Txn {
	tx := s.db.Begin()
	if tx.Error != nil {
		return &Txn{beginErr: tx.Error}
	}
	return &Txn{db: tx}
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// resolveDB returns the gorm handle for the given transaction, or the base
// connection when txn is nil
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.db, nil
	}
	gormTxn, ok := txn.(*Txn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if gormTxn.beginErr != nil {
		return nil, gormTxn.beginErr
	}
	if gormTxn.finished {
		return nil, errors.New("transaction already finished")
	}
	return gormTxn.db, nil
}

// translateError maps driver errors onto the storage error taxonomy
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", types.ErrDuplicateRecord, err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrRecordNotFound
	}
	return err
}
