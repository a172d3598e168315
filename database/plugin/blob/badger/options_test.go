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
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b := &BlobStoreBadger{gcEnabled: true}
	for _, opt := range []BlobStoreBadgerOptionFunc{
		WithDataDir("/tmp/hubd"),
		WithLogger(logger),
		WithPromRegistry(registry),
		WithGc(false),
		WithBlockCacheSize(123456789),
		WithIndexCacheSize(987654321),
		WithValueLogFileSize(1024),
		WithMemTableSize(2048),
		WithValueThreshold(512),
	} {
		opt(b)
	}
	assert.Equal(t, "/tmp/hubd", b.dataDir)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, registry, b.promRegistry)
	assert.False(t, b.gcEnabled)
	assert.Equal(
		t,
		tuning{
			blockCacheSize:   123456789,
			indexCacheSize:   987654321,
			valueLogFileSize: 1024,
			memTableSize:     2048,
			valueThreshold:   512,
		},
		b.tuning,
	)
}

func TestInMemoryDisablesGc(t *testing.T) {
	store, err := New(WithGc(true))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer store.Close()
	assert.False(t, store.gcEnabled)
	assert.Nil(t, store.gcStopCh)
}

func TestDiskStoreRunsGc(t *testing.T) {
	store, err := New(WithDataDir(t.TempDir()))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert.NotNil(t, store.gcStopCh)
	// One pass on an empty store has nothing to rewrite
	store.runValueLogGC()
	assert.NoError(t, store.Close())
	assert.Nil(t, store.gcStopCh)
}
