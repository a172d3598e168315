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

package hubd

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
	assert.Empty(t, cfg.apiListenAddress)
	assert.False(t, cfg.tracing)
	assert.Zero(t, cfg.shutdownTimeout)
}

func TestNewConfigOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := NewConfig(
		WithDatabasePath("/tmp/hubd"),
		WithBlobPlugin("badger"),
		WithMetadataPlugin("sqlite"),
		WithPrometheusRegistry(reg),
		WithApiListenAddress("127.0.0.1:8080"),
		WithIndexReleases(true),
		WithRedisAddr("localhost:6379"),
		WithRedisChannelPrefix("test:"),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, "/tmp/hubd", cfg.dataDir)
	assert.Equal(t, "badger", cfg.blobPlugin)
	assert.Equal(t, "sqlite", cfg.metadataPlugin)
	assert.Equal(t, reg, cfg.promRegistry)
	assert.Equal(t, "127.0.0.1:8080", cfg.apiListenAddress)
	assert.True(t, cfg.indexReleases)
	assert.Equal(t, "localhost:6379", cfg.redisAddr)
	assert.Equal(t, "test:", cfg.redisChannelPrefix)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr bool
	}{
		{name: "defaults"},
		{
			name: "known plugins",
			opts: []ConfigOptionFunc{
				WithBlobPlugin("badger"),
				WithMetadataPlugin("sqlite"),
			},
		},
		{
			name:    "unknown blob plugin",
			opts:    []ConfigOptionFunc{WithBlobPlugin("bogus")},
			wantErr: true,
		},
		{
			name:    "unknown metadata plugin",
			opts:    []ConfigOptionFunc{WithMetadataPlugin("bogus")},
			wantErr: true,
		},
		{
			name:    "negative shutdown timeout",
			opts:    []ConfigOptionFunc{WithShutdownTimeout(-time.Second)},
			wantErr: true,
		},
		{
			name:    "channel prefix without redis",
			opts:    []ConfigOptionFunc{WithRedisChannelPrefix("x:")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(NewConfig(tt.opts...))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
