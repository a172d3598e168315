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

package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/blinklabs-io/hubd/database/plugin/metadata/internal/gormstore"
)

const defaultVacuumInterval = 24 * time.Hour

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store
type MetadataStoreSqlite struct {
	*gormstore.Store

	promRegistry prometheus.Registerer
	logger       *slog.Logger
	timerVacuum  *time.Timer
	timerMutex   sync.Mutex
	dataDir      string
	closed       bool
	vacuumWG     sync.WaitGroup

	// Zero disables the periodic VACUUM
	vacuumInterval time.Duration
}

// New creates a SQLite metadata store. Uses an in-memory database if dataDir
// is empty. The store must be started before use.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	return NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a SQLite metadata store with options
func NewWithOptions(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	d := &MetadataStoreSqlite{
		vacuumInterval: defaultVacuumInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d, nil
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Start() error {
	metadataDb, err := d.open()
	if err != nil {
		return err
	}
	store, err := gormstore.New(metadataDb, d.logger)
	if err != nil {
		if sqlDB, dbErr := metadataDb.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return err
	}
	d.Store = store
	d.Store.RegisterMetrics(d.promRegistry, "sqlite")
	// Periodic VACUUM frees unused pages
	d.scheduleVacuum()
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

func (d *MetadataStoreSqlite) open() (*gorm.DB, error) {
	if d.dataDir == "" {
		// Each in-memory store gets its own named database. A single
		// connection keeps writers from tripping over SQLITE_LOCKED on the
		// shared cache.
		dsn := fmt.Sprintf(
			"file:hubd-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)",
			uuid.NewString(),
		)
		metadataDb, err := gorm.Open(sqlite.Open(dsn), gormstore.GormConfig())
		if err != nil {
			return nil, err
		}
		sqlDB, err := metadataDb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		return metadataDb, nil
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read data dir: %w", err)
		}
		// Create data directory
		if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	metadataDbPath := filepath.Join(
		d.dataDir,
		"metadata.sqlite",
	)
	// WAL journal mode, wait on busy locks, increase cache size to 50MB (from 2MB)
	metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=cache_size(-50000)"
	metadataDb, err := gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
		),
		gormstore.GormConfig(),
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := metadataDb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return metadataDb, nil
}

func (d *MetadataStoreSqlite) runVacuum() error {
	d.timerMutex.Lock()
	if d.dataDir == "" || d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	// Track this vacuum operation while we know the store is open
	d.vacuumWG.Add(1)
	d.timerMutex.Unlock()
	defer d.vacuumWG.Done()

	if result := d.DB().Exec("VACUUM"); result.Error != nil {
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) scheduleVacuum() {
	d.timerMutex.Lock()
	defer d.timerMutex.Unlock()
	if d.closed || d.dataDir == "" || d.vacuumInterval <= 0 {
		return
	}
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
	}
	f := func() {
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
		)
		// schedule next run
		defer d.scheduleVacuum()
		if err := d.runVacuum(); err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	}
	d.timerVacuum = time.AfterFunc(d.vacuumInterval, f)
}

// Close shuts down the database connection and stops background processes
func (d *MetadataStoreSqlite) Close() error {
	d.timerMutex.Lock()
	if d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	d.closed = true
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
		d.timerVacuum = nil
	}
	d.timerMutex.Unlock()

	// Wait for any in-flight vacuum operations to complete
	d.vacuumWG.Wait()

	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
