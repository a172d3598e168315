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

package badger

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

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultValueLogFileSize = 256 << 20
	DefaultMemTableSize     = 64 << 20
	// Records up to this size stay in the LSM tree. Hub records are a few
	// hundred bytes, so in practice the value log only holds tombstones.
	DefaultValueThreshold = 4096
	gcInterval            = 5 * time.Minute
	gcDiscardRatio        = 0.5
	inMemoryMemTableSize  = 8 << 20
)

type tuning struct {
	blockCacheSize   uint64
	indexCacheSize   uint64
	valueLogFileSize int64
	memTableSize     int64
	valueThreshold   int64
}

// BlobStoreBadger stores records in badger. With no data directory the
// store is in-memory and nothing is persisted
type BlobStoreBadger struct {
	promRegistry prometheus.Registerer
	metrics      *blobMetrics
	db           *badger.DB
	logger       *slog.Logger
	gcStopCh     chan struct{}
	dataDir      string
	gcWg         sync.WaitGroup
	tuning       tuning
	gcEnabled    bool
}

// New opens the store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcEnabled: true,
		tuning: tuning{
			blockCacheSize:   DefaultBlockCacheSize,
			indexCacheSize:   DefaultIndexCacheSize,
			valueLogFileSize: DefaultValueLogFileSize,
			memTableSize:     DefaultMemTableSize,
			valueThreshold:   DefaultValueThreshold,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	d.db = db
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	if d.gcEnabled {
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.gcLoop(d.gcStopCh)
	}
	return d, nil
}

// badgerOptions builds the badger configuration. An empty data directory
// selects an in-memory store with GC disabled.
func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	if d.dataDir == "" {
		d.gcEnabled = false
		return badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(d.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true).
			WithMemTableSize(inMemoryMemTableSize).
			WithValueThreshold(d.tuning.valueThreshold), nil
	}
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return badger.Options{}, fmt.Errorf(
				"failed to read data dir: %w",
				err,
			)
		}
		if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
			return badger.Options{}, fmt.Errorf(
				"failed to create data dir: %w",
				err,
			)
		}
	}
	return badger.DefaultOptions(filepath.Join(d.dataDir, "blob")).
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(d.tuning.blockCacheSize)). //nolint:gosec // configured size
		WithIndexCacheSize(int64(d.tuning.indexCacheSize)). //nolint:gosec // configured size
		WithValueLogFileSize(d.tuning.valueLogFileSize).
		WithMemTableSize(d.tuning.memTableSize).
		WithValueThreshold(d.tuning.valueThreshold).
		WithCompression(options.Snappy), nil
}

func (d *BlobStoreBadger) gcLoop(stop <-chan struct{}) {
	defer d.gcWg.Done()
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.runValueLogGC()
		case <-stop:
			return
		}
	}
}

// runValueLogGC rewrites value log files until badger reports nothing left
// to reclaim
func (d *BlobStoreBadger) runValueLogGC() {
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			d.logger.Warn(
				"blob store value log GC failed",
				"component", "database",
				"error", err,
			)
		}
		return
	}
}

// Start implements the plugin.Plugin interface. The store is opened by New.
func (d *BlobStoreBadger) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops GC and closes the underlying database
func (d *BlobStoreBadger) Close() error {
	if d.gcStopCh != nil {
		close(d.gcStopCh)
		d.gcStopCh = nil
		d.gcWg.Wait()
	}
	return d.db.Close()
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}
