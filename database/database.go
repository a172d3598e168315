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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/database/plugin/blob"
	"github.com/blinklabs-io/hubd/database/plugin/metadata"

	// Register storage plugins
	_ "github.com/blinklabs-io/hubd/database/plugin/blob/aws"
	_ "github.com/blinklabs-io/hubd/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/hubd/database/plugin/blob/gcs"
	_ "github.com/blinklabs-io/hubd/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/hubd/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/hubd/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the storage configuration. An empty DataDir selects
// in-memory storage for plugins that support it.
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
}

// Database pairs the blob store holding canonical records with the
// metadata store holding their queryable index
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	// Close metadata
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	// Close blob
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using the
// configured data directory
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	blobPlugin := cfg.BlobPlugin
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	metadataPlugin := cfg.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	// Point both plugins at our data directory. Plugins without a data-dir
	// option ignore this.
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		blobPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		metadataPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	startOpts := plugin.StartOptions{
		Logger:       logger,
		PromRegistry: cfg.PromRegistry,
	}
	blobDb, err := blob.New(blobPlugin, startOpts)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	metadataDb, err := metadata.New(metadataPlugin, startOpts)
	if err != nil {
		_ = blobDb.Close()
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  cfg.DataDir,
	}
	if err := db.checkCommitTimestamp(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
