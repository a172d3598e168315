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
	"sync"

	"github.com/blinklabs-io/hubd/database/plugin"
)

const (
	DefaultBlockCacheSize = 256 << 20
	DefaultIndexCacheSize = 64 << 20
	DefaultDataDir        = ".hubd"
)

// pluginOptions holds the values set through flags, env vars and config
type pluginOptions struct {
	dataDir        string
	blockCacheSize uint64
	indexCacheSize uint64
	gcEnabled      bool
}

var (
	cmdlineOptions = pluginOptions{
		dataDir:        DefaultDataDir,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
		gcEnabled:      true,
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB embedded key-value store (default)",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "directory for record storage, empty keeps records in memory",
					DefaultValue: DefaultDataDir,
					Dest:         &cmdlineOptions.dataDir,
				},
				{
					Name:         "block-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "block cache size in bytes",
					DefaultValue: uint64(DefaultBlockCacheSize),
					Dest:         &cmdlineOptions.blockCacheSize,
				},
				{
					Name:         "index-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "index cache size in bytes",
					DefaultValue: uint64(DefaultIndexCacheSize),
					Dest:         &cmdlineOptions.indexCacheSize,
				},
				{
					Name:         "gc",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "run value log garbage collection",
					DefaultValue: true,
					Dest:         &cmdlineOptions.gcEnabled,
				},
			},
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	p, err := New(
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
		WithDataDir(opts.dataDir),
		WithBlockCacheSize(opts.blockCacheSize),
		WithIndexCacheSize(opts.indexCacheSize),
		WithGc(opts.gcEnabled),
	)
	if err != nil {
		// Start reports the error
		return plugin.NewErrorPlugin(err)
	}
	return p
}
