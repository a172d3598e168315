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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/hubd/api"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/event"
	"github.com/blinklabs-io/hubd/hub"
	"github.com/blinklabs-io/hubd/notify"
)

const defaultShutdownTimeout = 30 * time.Second

type Node struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	manager       *hub.Manager
	forwarder     *notify.Forwarder
	apiServer     *api.Server
	cancel        context.CancelFunc
	shutdownFuncs []func(context.Context) error
	ready         chan struct{}
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	return n, nil
}

func (n *Node) configValidate() error {
	if n.config.shutdownTimeout < 0 {
		return fmt.Errorf(
			"invalid shutdown timeout: %s",
			n.config.shutdownTimeout,
		)
	}
	if n.config.blobPlugin != "" &&
		!pluginRegistered(plugin.PluginTypeBlob, n.config.blobPlugin) {
		return fmt.Errorf("unknown blob plugin: %s", n.config.blobPlugin)
	}
	if n.config.metadataPlugin != "" &&
		!pluginRegistered(plugin.PluginTypeMetadata, n.config.metadataPlugin) {
		return fmt.Errorf(
			"unknown metadata plugin: %s",
			n.config.metadataPlugin,
		)
	}
	if n.config.redisChannelPrefix != "" && n.config.redisAddr == "" {
		return errors.New("redis channel prefix set without a redis address")
	}
	return nil
}

func pluginRegistered(pluginType plugin.PluginType, name string) bool {
	for _, p := range plugin.GetPlugins(pluginType) {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Run starts every component and blocks until ctx is canceled or Stop is
// called. Canceling ctx also shuts the node down.
func (n *Node) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(runCtx); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if db == nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"blob and metadata stores are out of sync",
				"error", err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Hub manager
	manager, err := hub.NewManager(hub.ManagerConfig{
		Database:      n.db,
		EventBus:      n.eventBus,
		Logger:        n.config.logger,
		PromRegistry:  n.config.promRegistry,
		Clock:         n.config.clock,
		IndexReleases: n.config.indexReleases,
	})
	if err != nil {
		return fmt.Errorf("failed to create hub manager: %w", err)
	}
	n.manager = manager
	// Forward events to Redis
	if n.config.redisAddr != "" {
		forwarder, err := notify.NewForwarder(
			runCtx,
			notify.Config{
				Logger:        n.config.logger,
				Addr:          n.config.redisAddr,
				ChannelPrefix: n.config.redisChannelPrefix,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to start event forwarder: %w", err)
		}
		n.forwarder = forwarder
		n.forwarder.Register(n.eventBus, hub.EventTypes...)
	}
	// Hub API
	if n.config.apiListenAddress != "" {
		n.apiServer = api.New(
			api.Config{
				ListenAddress:   n.config.apiListenAddress,
				ShutdownTimeout: n.shutdownTimeout(),
			},
			n.manager,
			n.config.logger,
		)
		if err := n.apiServer.Start(runCtx); err != nil {
			return err
		}
	}
	close(n.ready)

	// Wait for shutdown
	select {
	case <-runCtx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// Ready returns a channel that is closed once Run has started every component
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// Manager returns the hub manager. It is nil until the node is ready.
func (n *Node) Manager() *hub.Manager {
	return n.manager
}

// EventBus returns the node event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// ApiAddr returns the bound API listener address, or nil when the API is
// not running
func (n *Node) ApiAddr() net.Addr {
	if n.apiServer == nil {
		return nil
	}
	return n.apiServer.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdownTimeout() time.Duration {
	if n.config.shutdownTimeout > 0 {
		return n.config.shutdownTimeout
	}
	return defaultShutdownTimeout
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		n.shutdownTimeout(),
	)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.apiServer != nil {
		if stopErr := n.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Drain event delivery
	n.config.logger.Debug("shutdown phase 2: draining events")

	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.forwarder != nil {
		n.forwarder.Close()
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	n.config.logger.Debug("shutdown phase 4: cleanup resources")

	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.cancel != nil {
		n.cancel()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
