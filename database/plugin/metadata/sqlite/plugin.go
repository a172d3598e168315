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
	"sync"

	"github.com/blinklabs-io/hubd/database/plugin"
)

const DefaultDataDir = ".hubd"

type pluginOptions struct {
	dataDir string
	vacuum  bool
}

var (
	pluginOpts = pluginOptions{
		dataDir: DefaultDataDir,
		vacuum:  true,
	}
	pluginOptsMu sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for sqlite storage (empty for in-memory)",
					DefaultValue: DefaultDataDir,
					Dest:         &pluginOpts.dataDir,
				},
				{
					Name:         "vacuum",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "Run VACUUM once a day",
					DefaultValue: true,
					Dest:         &pluginOpts.vacuum,
				},
			},
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	pluginOptsMu.RLock()
	o := pluginOpts
	pluginOptsMu.RUnlock()
	opts := []SqliteOptionFunc{
		WithDataDir(o.dataDir),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
	}
	if !o.vacuum {
		opts = append(opts, WithVacuumInterval(0))
	}
	p, err := NewWithOptions(opts...)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
