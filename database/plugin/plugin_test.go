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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database/plugin"
	_ "github.com/blinklabs-io/hubd/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/hubd/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/hubd/internal/config"
)

type optionTestValues struct {
	name    string
	enabled bool
	workers int
	size    uint64
}

func registerOptionTestPlugin(t *testing.T, vals *optionTestValues) string {
	t.Helper()
	pluginName := "opts-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: newMockPlugin,
		Options: []plugin.PluginOption{
			{
				Name:         "name",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: "default",
				Dest:         &(vals.name),
			},
			{
				Name:         "enabled",
				Type:         plugin.PluginOptionTypeBool,
				DefaultValue: false,
				Dest:         &(vals.enabled),
			},
			{
				Name:         "workers",
				Type:         plugin.PluginOptionTypeInt,
				DefaultValue: 1,
				Dest:         &(vals.workers),
			},
			{
				Name:         "size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(10),
				Dest:         &(vals.size),
				CustomEnvVar: "HUBD_TEST_CUSTOM_SIZE",
			},
		},
	})
	return pluginName
}

// Basic tests for SetPluginOption to ensure programmatic option setting works
func TestSetPluginOption_SuccessAndTypeCheck(t *testing.T) {
	// Set data-dir for sqlite plugin to an empty string (in-memory) and ensure no error
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, config.DefaultMetadataPlugin, "data-dir", ""); err != nil {
		t.Fatalf("unexpected error setting sqlite data-dir: %v", err)
	}

	// Setting with wrong type should return an error
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, config.DefaultMetadataPlugin, "data-dir", 123); err == nil {
		t.Fatalf(
			"expected type error when setting sqlite data-dir with int, got nil",
		)
	}

	// Setting an unknown option is a no-op (non-fatal) so should not return an error
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, config.DefaultMetadataPlugin, "does-not-exist", "x"); err != nil {
		t.Fatalf("unexpected error when setting unknown option: %v", err)
	}

	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, config.DefaultBlobPlugin, "data-dir", ""); err != nil {
		t.Fatalf("unexpected error setting badger data-dir: %v", err)
	}

	// Test uint option handling for badger block-cache-size
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, config.DefaultBlobPlugin, "block-cache-size", uint64(100000000)); err != nil {
		t.Fatalf("unexpected error setting badger block-cache-size: %v", err)
	}

	// Test bool option handling for badger gc
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, config.DefaultBlobPlugin, "gc", true); err != nil {
		t.Fatalf("unexpected error setting badger gc: %v", err)
	}

	// Test plugin not found error
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", t.TempDir()); err == nil {
		t.Fatalf(
			"expected error when setting option for nonexistent plugin, got nil",
		)
	}
}

func TestSetPluginOption_Uint(t *testing.T) {
	var vals optionTestValues
	pluginName := registerOptionTestPlugin(t, &vals)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "size", 42))
	assert.Equal(t, uint64(42), vals.size)
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "size", -1))
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "size", "big"))
}

func TestProcessEnvVars(t *testing.T) {
	var vals optionTestValues
	registerOptionTestPlugin(t, &vals)
	prefix := "HUBD_DATABASE_BLOB_OPTS_" + pluginNameEnv(t)
	t.Setenv(prefix+"_NAME", "from-env")
	t.Setenv(prefix+"_ENABLED", "true")
	t.Setenv(prefix+"_WORKERS", "7")
	t.Setenv("HUBD_TEST_CUSTOM_SIZE", "99")
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "from-env", vals.name)
	assert.True(t, vals.enabled)
	assert.Equal(t, 7, vals.workers)
	assert.Equal(t, uint64(99), vals.size)
}

func TestProcessEnvVars_BadValue(t *testing.T) {
	var vals optionTestValues
	registerOptionTestPlugin(t, &vals)
	t.Setenv("HUBD_DATABASE_BLOB_OPTS_"+pluginNameEnv(t)+"_ENABLED", "maybe")
	require.Error(t, plugin.ProcessEnvVars())
}

func TestProcessConfig(t *testing.T) {
	var vals optionTestValues
	pluginName := registerOptionTestPlugin(t, &vals)
	err := plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {
			pluginName: {
				"name":    "from-config",
				"enabled": "true",
				"workers": 3,
				"size":    5,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-config", vals.name)
	assert.True(t, vals.enabled)
	assert.Equal(t, 3, vals.workers)
	assert.Equal(t, uint64(5), vals.size)

	err = plugin.ProcessConfig(map[string]map[string]map[string]any{
		"bogus": {},
	})
	require.Error(t, err)
	err = plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {"missing-" + t.Name(): {}},
	})
	require.Error(t, err)
}

func TestPopulateCmdlineOptions(t *testing.T) {
	var vals optionTestValues
	pluginName := registerOptionTestPlugin(t, &vals)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	require.NotNil(t, fs.Lookup("blob-badger-data-dir"))
	require.NotNil(t, fs.Lookup("metadata-sqlite-data-dir"))
	require.NoError(t, fs.Parse([]string{
		"--blob-" + pluginName + "-workers=12",
		"--blob-" + pluginName + "-enabled",
	}))
	assert.Equal(t, 12, vals.workers)
	assert.True(t, vals.enabled)
	assert.Equal(t, "default", vals.name)
}

func TestStartPlugin(t *testing.T) {
	pluginName := "start-" + t.Name()
	startErr := errors.New("boom")
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: pluginName,
		NewFromOptionsFunc: func(plugin.StartOptions) plugin.Plugin {
			return plugin.NewErrorPlugin(startErr)
		},
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName, plugin.StartOptions{})
	require.ErrorIs(t, err, startErr)
	_, err = plugin.StartPlugin(plugin.PluginTypeBlob, "missing-"+t.Name(), plugin.StartOptions{})
	require.Error(t, err)
}

func pluginNameEnv(t *testing.T) string {
	t.Helper()
	ret := []byte{}
	for _, c := range []byte(t.Name()) {
		switch {
		case c >= 'a' && c <= 'z':
			ret = append(ret, c-'a'+'A')
		case c == '-':
			ret = append(ret, '_')
		default:
			ret = append(ret, c)
		}
	}
	return string(ret)
}
