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
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/hubd/hub"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	clock              hub.Clock
	dataDir            string
	blobPlugin         string
	metadataPlugin     string
	apiListenAddress   string
	redisAddr          string
	redisChannelPrefix string
	tracing            bool
	tracingStdout      bool
	indexReleases      bool
	shutdownTimeout    time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock overrides the time source used for record timestamps
func WithClock(clock hub.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithApiListenAddress specifies the listen address for the hub API. The API is disabled when empty
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithIndexReleases adds a content index entry for every release added to a hub
func WithIndexReleases(indexReleases bool) ConfigOptionFunc {
	return func(c *Config) {
		c.indexReleases = indexReleases
	}
}

// WithRedisAddr enables forwarding hub events to Redis pub/sub at the given address
func WithRedisAddr(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.redisAddr = addr
	}
}

// WithRedisChannelPrefix specifies the prefix for Redis channel names
func WithRedisChannelPrefix(prefix string) ConfigOptionFunc {
	return func(c *Config) {
		c.redisChannelPrefix = prefix
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
