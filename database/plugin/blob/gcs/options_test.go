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

package gcs

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database/plugin"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b, err := NewWithOptions(
		WithLogger(logger),
		WithPromRegistry(registry),
		WithBucket("test-bucket"),
		WithPrefix("/hubs/"),
		WithCredentialsFile("/etc/creds.json"),
	)
	require.NoError(t, err)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, registry, b.promRegistry)
	assert.Equal(t, "test-bucket", b.bucketName)
	assert.Equal(t, "hubs/", b.prefix)
	assert.Equal(t, "/etc/creds.json", b.credentialsFile)
}

func TestNewFromLocation(t *testing.T) {
	b, err := New("gcs://bucket/records", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bucket", b.bucketName)
	assert.Equal(t, "records/", b.prefix)

	_, err = New("s3://bucket", nil, nil)
	require.Error(t, err)
	_, err = New("gcs://", nil, nil)
	require.Error(t, err)
}

func TestNewFromCmdlineOptions(t *testing.T) {
	pluginOptsMu.Lock()
	original := pluginOpts
	pluginOpts = pluginOptions{bucket: "media", prefix: "p"}
	pluginOptsMu.Unlock()
	t.Cleanup(func() {
		pluginOptsMu.Lock()
		pluginOpts = original
		pluginOptsMu.Unlock()
	})

	store, ok := NewFromCmdlineOptions(plugin.StartOptions{}).(*BlobStoreGCS)
	require.True(t, ok)
	assert.Equal(t, "media", store.bucketName)
	assert.Equal(t, "p/", store.prefix)
}

func TestValidateCredentials(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	assert.NoError(t, validateCredentials(""))
	assert.NoError(t, validateCredentials(existing))
	err := validateCredentials(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS credentials file does not exist")
}

func TestStartWithoutBucket(t *testing.T) {
	b, err := NewWithOptions()
	require.NoError(t, err)
	assert.Error(t, b.Start())
}
