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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/hubd/database/plugin/metadata/internal/gormstore"
)

type MysqlOptionFunc func(*MetadataStoreMysql)

func WithLogger(logger *slog.Logger) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.logger = logger
	}
}

func WithPromRegistry(registry prometheus.Registerer) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.promRegistry = registry
	}
}

// WithConnSettings replaces the connection settings wholesale
func WithConnSettings(conn gormstore.ConnSettings) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.conn = conn
	}
}

// WithDSN sets a full DSN, which wins over the individual settings
func WithDSN(dsn string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.conn.DSN = dsn
	}
}
