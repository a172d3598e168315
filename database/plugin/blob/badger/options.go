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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type BlobStoreBadgerOptionFunc func(*BlobStoreBadger)

func WithLogger(logger *slog.Logger) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.logger = logger
	}
}

// WithPromRegistry enables store metrics on registry
func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.promRegistry = registry
	}
}

// WithDataDir sets the directory holding the store. Records are kept in
// memory when it is empty.
func WithDataDir(dataDir string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.dataDir = dataDir
	}
}

// WithGc toggles periodic value log garbage collection on disk-backed stores
func WithGc(enabled bool) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.gcEnabled = enabled
	}
}

// WithBlockCacheSize sets the block cache size in bytes
func WithBlockCacheSize(size uint64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning.blockCacheSize = size
	}
}

// WithIndexCacheSize sets the index cache size in bytes
func WithIndexCacheSize(size uint64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning.indexCacheSize = size
	}
}

// WithValueLogFileSize sets the maximum size of a value log file in bytes
func WithValueLogFileSize(size int64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning.valueLogFileSize = size
	}
}

// WithMemTableSize sets the memtable size in bytes
func WithMemTableSize(size int64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning.memTableSize = size
	}
}

// WithValueThreshold sets the largest value kept inline in the LSM tree
func WithValueThreshold(threshold int64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.tuning.valueThreshold = threshold
	}
}
