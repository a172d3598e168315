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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type SqliteOptionFunc func(*MetadataStoreSqlite)

func WithLogger(logger *slog.Logger) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.logger = logger
	}
}

func WithPromRegistry(registry prometheus.Registerer) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.promRegistry = registry
	}
}

// WithDataDir sets the directory holding metadata.sqlite. An empty value
// selects a private in-memory database.
func WithDataDir(dataDir string) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.dataDir = dataDir
	}
}

// WithVacuumInterval sets how often VACUUM runs on a file-backed store. Zero
// disables it.
func WithVacuumInterval(interval time.Duration) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.vacuumInterval = interval
	}
}
