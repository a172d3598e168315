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

package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "hubd.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin     string `yaml:"metadataPlugin"     envconfig:"HUBD_DATABASE_METADATA_PLUGIN"`
	BlobPlugin         string `yaml:"blobPlugin"         envconfig:"HUBD_DATABASE_BLOB_PLUGIN"`
	DatabasePath       string `yaml:"databasePath"                                                 split_words:"true"`
	BindAddr           string `yaml:"bindAddr"                                                     split_words:"true"`
	ShutdownTimeout    string `yaml:"shutdownTimeout"                                              split_words:"true"`
	RedisAddr          string `yaml:"redisAddr"                                                    split_words:"true"`
	RedisChannelPrefix string `yaml:"redisChannelPrefix"                                           split_words:"true"`
	ApiPort            uint   `yaml:"apiPort"                                                      split_words:"true"`
	MetricsPort        uint   `yaml:"metricsPort"                                                  split_words:"true"`
	IndexReleases      bool   `yaml:"indexReleases"                                                split_words:"true"`
	Tracing            bool   `yaml:"tracing"`
	TracingStdout      bool   `yaml:"tracingStdout"                                                split_words:"true"`
}

// ParsedShutdownTimeout returns ShutdownTimeout as a duration
func (c *Config) ParsedShutdownTimeout() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return d, nil
}

// ApiListenAddress returns the hub API listen address, or an empty string
// when the API is disabled
func (c *Config) ApiListenAddress() string {
	if c.ApiPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.BindAddr, c.ApiPort)
}

func defaultConfig() *Config {
	return &Config{
		BindAddr:        "0.0.0.0",
		DatabasePath:    ".hubd",
		ApiPort:         8080,
		MetricsPort:     12798,
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

var globalConfig = defaultConfig()

// configSearchPaths returns the config file locations checked when no file
// is given
func configSearchPaths() []string {
	var ret []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		ret = append(ret, filepath.Join(homeDir, ".hubd", "hubd.yaml"))
	}
	return append(ret, "/etc/hubd/hubd.yaml")
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := loadConfigBytes(buf); err != nil {
			return nil, err
		}
	}

	// Process environment variables
	err := envconfig.Process("hubd", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if _, err := globalConfig.ParsedShutdownTimeout(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func loadConfigBytes(buf []byte) error {
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// Otherwise the whole file is the main config
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			name, entries := splitPluginSection(tempCfg.Database.Blob, "blob")
			if name != "" {
				globalConfig.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", entries)
		}
		if tempCfg.Database.Metadata != nil {
			name, entries := splitPluginSection(
				tempCfg.Database.Metadata,
				"metadata",
			)
			if name != "" {
				globalConfig.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", entries)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// splitPluginSection separates the selected plugin name from the
// per-plugin option maps in a database.blob or database.metadata section
func splitPluginSection(
	section map[string]any,
	sectionName string,
) (string, map[string]map[string]any) {
	var name string
	entries := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			if s, ok := v.(string); ok {
				name = s
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			entries[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			entries[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				sectionName,
				k,
				v,
			)
		}
	}
	return name, entries
}

func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	entries map[string]map[string]any,
) {
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = entries
		return
	}
	maps.Copy(pluginConfig[pluginType], entries)
}

func GetConfig() *Config {
	return globalConfig
}
