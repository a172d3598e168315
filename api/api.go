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

// Package api serves the hub REST API along with gRPC health and
// reflection endpoints on a single listener
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"connectrpc.com/grpcreflect"
	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/blinklabs-io/hubd/hub"
)

const (
	DefaultListenAddress = ":8080"
	PrincipalHeader      = "X-Hub-Principal"
	RequestIdHeader      = "X-Request-Id"
)

type Config struct {
	ListenAddress string
	// ShutdownTimeout bounds the graceful shutdown triggered by context
	// cancellation
	ShutdownTimeout time.Duration
}

// Server is the hub API server
type Server struct {
	config     Config
	logger     *slog.Logger
	manager    *hub.Manager
	httpServer *http.Server
	listenAddr net.Addr
	mu         sync.Mutex
}

func New(cfg Config, manager *hub.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		config:  cfg,
		logger:  logger.With("component", "api"),
		manager: manager,
	}
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/hubs", s.handleListHubs)
	mux.HandleFunc("POST /api/v0/hubs", s.handleInitHub)
	mux.HandleFunc("GET /api/v0/hubs/{handle}", s.handleGetHub)
	mux.HandleFunc(
		"PUT /api/v0/hubs/{handle}/artists/{principal}",
		s.handlePutArtist,
	)
	mux.HandleFunc(
		"PUT /api/v0/hubs/{handle}/collaborators/{principal}",
		s.handlePutCollaborator,
	)
	mux.HandleFunc("GET /api/v0/hubs/{handle}/members", s.handleMembers)
	mux.HandleFunc("GET /api/v0/hubs/{handle}/content", s.handleContent)
	mux.HandleFunc(
		"GET /api/v0/hubs/{handle}/subscribers",
		s.handleSubscribers,
	)
	mux.HandleFunc("POST /api/v0/hubs/{handle}/releases", s.handleAddRelease)
	mux.HandleFunc("POST /api/v0/hubs/{handle}/posts", s.handleInitPost)
	mux.HandleFunc("POST /api/v0/releases", s.handleRegisterRelease)
	mux.HandleFunc("GET /api/v0/releases/{address}", s.handleGetRelease)
	mux.HandleFunc(
		"GET /api/v0/hub-releases/{address}",
		s.handleGetHubRelease,
	)
	mux.HandleFunc("GET /api/v0/posts/{address}", s.handleGetPost)
	mux.HandleFunc("PATCH /api/v0/posts/{address}", s.handleUpdatePost)
	mux.HandleFunc("GET /api/v0/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/v0/subscriptions", s.handleSubscribe)
	mux.HandleFunc("DELETE /api/v0/subscriptions/{to}", s.handleUnsubscribe)

	compress1KB := connect.WithCompressMinBytes(1024)
	mux.Handle(
		grpchealth.NewHandler(
			grpchealth.NewStaticChecker(),
			compress1KB,
		),
	)
	mux.Handle(
		grpcreflect.NewHandlerV1(
			grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName),
			compress1KB,
		),
	)
	mux.Handle(
		grpcreflect.NewHandlerV1Alpha(
			grpcreflect.NewStaticReflector(grpchealth.HealthV1ServiceName),
			compress1KB,
		),
	)
	// Use h2c so we can serve HTTP/2 without TLS
	return h2c.NewHandler(s.withRequestLogging(mux), &http2.Server{})
}

// withRequestLogging tags each request with an id and logs its outcome
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, requestId)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.logger.Debug(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestId,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through so gRPC streaming works behind the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Start binds the listener and serves in a background goroutine. The
// server shuts down when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.listenAddr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	s.logger.Info("API listener started on " + ln.Addr().String())

	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			s.config.ShutdownTimeout,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()
	return nil
}

// Addr returns the bound listener address, or nil when not running
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer == nil {
		return nil
	}
	return s.listenAddr
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Debug("shutting down API server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	return nil
}
