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

package mysql

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/blinklabs-io/hubd/database/plugin/metadata/internal/gormstore"
)

// mysqlErrUnknownDatabase is returned by the server when the selected
// database does not exist
const mysqlErrUnknownDatabase = 1049

// MetadataStoreMysql stores metadata in MySQL.
type MetadataStoreMysql struct {
	*gormstore.Store

	promRegistry prometheus.Registerer
	logger       *slog.Logger
	conn         gormstore.ConnSettings
}

var defaultConn = gormstore.ConnSettings{
	Host:     "localhost",
	Port:     3306,
	User:     "root",
	Database: "hubd",
	TimeZone: "UTC",
}

// New creates a MySQL metadata store from connection settings. Unset
// fields fall back to the local defaults.
func New(
	conn gormstore.ConnSettings,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreMysql, error) {
	return NewWithOptions(
		WithConnSettings(conn),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

func NewWithOptions(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	db := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(db)
	}
	db.conn.Fill(defaultConn)
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	// The connection is opened in Start
	return db, nil
}

// buildDSN returns the DSN to connect with and the database name it selects
func (d *MetadataStoreMysql) buildDSN() (string, string) {
	c := d.conn
	if c.DSN != "" {
		if parsedDB, ok := parseMysqlDatabaseFromDSN(c.DSN); ok {
			return c.DSN, parsedDB
		}
		return c.DSN, c.Database
	}
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host + ":" + strconv.FormatUint(c.Port, 10)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	cfg.Loc = time.UTC
	if loc, err := time.LoadLocation(c.TimeZone); err == nil {
		cfg.Loc = loc
	}
	// sslmode maps onto the driver's tls parameter
	cfg.TLSConfig = c.SSLMode
	return cfg.FormatDSN(), c.Database
}

func (d *MetadataStoreMysql) openDB(dsn string) (*gorm.DB, error) {
	gormConfig := gormstore.GormConfig()
	gormConfig.PrepareStmt = true
	return gorm.Open(gormmysql.Open(dsn), gormConfig)
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	dsn, logDatabase := d.buildDSN()
	metadataDb, err := d.openDB(dsn)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) &&
			mysqlErr.Number == mysqlErrUnknownDatabase {
			created, createErr := d.ensureDatabaseExists(dsn, logDatabase)
			if createErr != nil {
				return fmt.Errorf(
					"create database %s: %w",
					logDatabase,
					createErr,
				)
			}
			if created {
				metadataDb, err = d.openDB(dsn)
			}
		}
		if err != nil {
			return err
		}
	}
	d.logger.Info(
		"connected to mysql metadata store",
		"host", d.conn.Host,
		"port", d.conn.Port,
		"database", logDatabase,
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
	d.Store.RegisterMetrics(d.promRegistry, "mysql")
	return nil
}

func (d *MetadataStoreMysql) ensureDatabaseExists(
	dsn string,
	dbName string,
) (bool, error) {
	if dbName == "" {
		return false, nil
	}
	adminDsn, ok := stripDatabaseFromDSN(dsn)
	if !ok {
		return false, nil
	}
	adminDb, err := d.openDB(adminDsn)
	if err != nil {
		return false, err
	}
	sqlAdminDb, err := adminDb.DB()
	if err != nil {
		return false, err
	}
	defer sqlAdminDb.Close()
	if result := adminDb.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)); result.Error != nil {
		return false, result.Error
	}
	return true, nil
}

func parseMysqlDatabaseFromDSN(dsn string) (string, bool) {
	base := dsn
	if idx := strings.Index(base, "?"); idx >= 0 {
		base = base[:idx]
	}
	slash := strings.LastIndex(base, "/")
	if slash < 0 || slash == len(base)-1 {
		return "", false
	}
	return base[slash+1:], true
}

func stripDatabaseFromDSN(dsn string) (string, bool) {
	base := dsn
	params := ""
	if idx := strings.Index(dsn, "?"); idx >= 0 {
		base = dsn[:idx]
		params = dsn[idx+1:]
	}
	slash := strings.LastIndex(base, "/")
	if slash < 0 {
		return "", false
	}
	base = base[:slash+1]
	if params == "" {
		return base, true
	}
	return base + "?" + params, true
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the connection pool. It is safe to call before Start.
func (d *MetadataStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
