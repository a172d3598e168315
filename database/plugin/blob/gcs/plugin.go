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
	"sync"

	"github.com/blinklabs-io/hubd/database/plugin"
)

type pluginOptions struct {
	bucket          string
	prefix          string
	credentialsFile string
}

var (
	pluginOpts   pluginOptions
	pluginOptsMu sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "gcs",
			Description:        "Google Cloud Storage blob store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:        "bucket",
					Type:        plugin.PluginOptionTypeString,
					Description: "GCS bucket name",
					Dest:        &pluginOpts.bucket,
				},
				{
					Name:        "prefix",
					Type:        plugin.PluginOptionTypeString,
					Description: "GCS object name prefix",
					Dest:        &pluginOpts.prefix,
				},
				{
					// Shares the variable the Google client libraries read
					Name:         "credentials-file",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Path to a service account credentials file",
					CustomEnvVar: "GOOGLE_APPLICATION_CREDENTIALS",
					Dest:         &pluginOpts.credentialsFile,
				},
			},
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	pluginOptsMu.RLock()
	o := pluginOpts
	pluginOptsMu.RUnlock()
	p, err := NewWithOptions(
		WithBucket(o.bucket),
		WithPrefix(o.prefix),
		WithCredentialsFile(o.credentialsFile),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
	)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
