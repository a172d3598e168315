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

package postgres

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blinklabs-io/hubd/database/plugin/metadata/internal/gormstore"
)

// MetadataStorePostgres stores metadata in Postgres.
type MetadataStorePostgres struct {
	*gormstore.Store

	promRegistry prometheus.Registerer
	logger       *slog.Logger
	conn         gormstore.ConnSettings
}

var defaultConn = gormstore.ConnSettings{
	Host:     "localhost",
	Port:     5432,
	User:     "postgres",
	Database: "hubd",
	SSLMode:  "disable",
	TimeZone: "UTC",
}

// New creates a Postgres metadata store
func New(
	conn gormstore.ConnSettings,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStorePostgres, error) {
	return NewWithOptions(
		WithConnSettings(conn),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions applies opts and fills in defaults for anything left unset.
// Nothing is opened until Start.
func NewWithOptions(opts ...PostgresOptionFunc) (*MetadataStorePostgres, error) {
	db := &MetadataStorePostgres{}
	for _, opt := range opts {
		opt(db)
	}
	db.conn.Fill(defaultConn)
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db, nil
}

// buildDSN returns a libpq keyword/value connection string
func (d *MetadataStorePostgres) buildDSN() string {
	c := d.conn
	if c.DSN != "" {
		return c.DSN
	}
	var sb strings.Builder
	for _, kv := range [][2]string{
		{"host", c.Host},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"port", strconv.FormatUint(c.Port, 10)},
		{"sslmode", c.SSLMode},
		{"TimeZone", c.TimeZone},
	} {
		if kv[1] == "" && kv[0] != "password" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(kv[0] + "=" + kv[1])
	}
	return sb.String()
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	gormConfig := gormstore.GormConfig()
	gormConfig.PrepareStmt = true
	metadataDb, err := gorm.Open(postgres.Open(d.buildDSN()), gormConfig)
	if err != nil {
		return err
	}
	d.logger.Info(
		"connected to postgres metadata store",
		"host", d.conn.Host,
		"port", d.conn.Port,
		"database", d.conn.Database,
	)
	// Configure connection pool
	sqlDB, err := metadataDb.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store, err := gormstore.New(metadataDb, d.logger)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.Store = store
	d.Store.RegisterMetrics(d.promRegistry, "postgres")
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

// Close closes the connection pool. It is safe to call before Start.
func (d *MetadataStorePostgres) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
