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

package aws

import (
	"sync"
	"time"

	"github.com/blinklabs-io/hubd/database/plugin"
)

type pluginOptions struct {
	endpoint       string
	bucket         string
	region         string
	prefix         string
	timeoutSeconds uint64
}

var (
	pluginOpts   pluginOptions
	pluginOptsMu sync.RWMutex
)

func init() {
	str := func(name, desc string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  desc,
			DefaultValue: "",
			Dest:         dest,
		}
	}
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "s3",
			Description:        "AWS S3 blob store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				str("endpoint", "S3 endpoint (for S3-compatible services)", &pluginOpts.endpoint),
				str("bucket", "S3 bucket name", &pluginOpts.bucket),
				str("region", "AWS region", &pluginOpts.region),
				str("prefix", "S3 object key prefix", &pluginOpts.prefix),
				{
					Name:         "timeout",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "per-request timeout in seconds (0 for the default)",
					DefaultValue: uint64(0),
					Dest:         &pluginOpts.timeoutSeconds,
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
		WithEndpoint(o.endpoint),
		WithBucket(o.bucket),
		WithRegion(o.region),
		WithPrefix(o.prefix),
		WithTimeout(time.Duration(o.timeoutSeconds)*time.Second),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
	)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
