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

package mysql

import (
	"sync"

	"github.com/blinklabs-io/hubd/database/plugin"
)

var (
	// Populated from flags, env vars and the config file. The password
	// has no default.
	pluginSettings   = defaultConn
	pluginSettingsMu sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options:            pluginSettings.PluginOptions("MySQL", "MYSQL"),
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	pluginSettingsMu.RLock()
	conn := pluginSettings
	pluginSettingsMu.RUnlock()
	p, err := New(conn, startOpts.Logger, startOpts.PromRegistry)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
