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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/hubd"
	"github.com/blinklabs-io/hubd/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	shutdownTimeout, err := cfg.ParsedShutdownTimeout()
	if err != nil {
		return err
	}

	n, err := hubd.New(
		hubd.NewConfig(
			hubd.WithLogger(logger),
			hubd.WithDatabasePath(cfg.DatabasePath),
			hubd.WithBlobPlugin(cfg.BlobPlugin),
			hubd.WithMetadataPlugin(cfg.MetadataPlugin),
			hubd.WithApiListenAddress(cfg.ApiListenAddress()),
			hubd.WithIndexReleases(cfg.IndexReleases),
			hubd.WithRedisAddr(cfg.RedisAddr),
			hubd.WithRedisChannelPrefix(cfg.RedisChannelPrefix),
			hubd.WithTracing(cfg.Tracing),
			hubd.WithTracingStdout(cfg.TracingStdout),
			hubd.WithShutdownTimeout(shutdownTimeout),
			// Enable metrics with default prometheus registry
			hubd.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		),
	)
	if err != nil {
		return err
	}

	// Metrics and debug listener
	var metricsServer *http.Server
	metricsErrCh := make(chan error, 1)
	if cfg.MetricsPort > 0 {
		http.Handle("/metrics", promhttp.Handler())
		metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
		logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "node",
		)
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				metricsErrCh <- fmt.Errorf(
					"failed to start metrics listener: %w",
					err,
				)
			}
		}()
	}
	stopMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(signalCtx)
	}()

	select {
	case err := <-metricsErrCh:
		logger.Error(err.Error(), "component", "node")
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error("shutdown errors occurred", "error", stopErr)
		}
		<-errChan
		return err
	case err := <-errChan:
		if err != nil {
			logger.Error("node error", "error", err)
		}
		if signalCtx.Err() != nil {
			logger.Info("signal received, graceful shutdown complete")
		}
		stopMetrics()
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error("shutdown errors occurred", "error", stopErr)
			return errors.Join(err, stopErr)
		}
		return err
	}
}
