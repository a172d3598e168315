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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

const envVarPrefix = "HUBD_DATABASE_"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

func pluginTypeFromName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	default:
		return 0, false
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	CustomEnvVar string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func(StartOptions) Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. Plugins register themselves from
// their package init()
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if it is not
// registered
func GetPlugin(
	pluginType PluginType,
	pluginName string,
	opts StartOptions,
) Plugin {
	p := findEntry(pluginType, pluginName)
	if p == nil || p.NewFromOptionsFunc == nil {
		return nil
	}
	return p.NewFromOptionsFunc(opts)
}

func findEntry(pluginType PluginType, pluginName string) *PluginEntry {
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type == pluginType && p.Name == pluginName {
			return p
		}
	}
	return nil
}

func flagName(p *PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
}

func envVarName(p *PluginEntry, opt PluginOption) string {
	if opt.CustomEnvVar != "" {
		return opt.CustomEnvVar
	}
	ret := envVarPrefix + strings.Join(
		[]string{
			PluginTypeName(p.Type),
			p.Name,
			opt.Name,
		},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(ret, "-", "_"))
}

func bindFlag[T any](
	bind func(p *T, name string, value T, usage string),
	opt PluginOption,
	name string,
) error {
	dest, ok := opt.Dest.(*T)
	if !ok {
		return fmt.Errorf("invalid destination for flag %s", name)
	}
	def, _ := opt.DefaultValue.(T)
	bind(dest, name, def, opt.Description)
	return nil
}

// PopulateCmdlineOptions adds a --<type>-<plugin>-<option> flag for every
// registered plugin option
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for i := range pluginEntries {
		p := &pluginEntries[i]
		for _, opt := range p.Options {
			name := flagName(p, opt)
			var err error
			switch opt.Type {
			case PluginOptionTypeString:
				err = bindFlag(fs.StringVar, opt, name)
			case PluginOptionTypeBool:
				err = bindFlag(fs.BoolVar, opt, name)
			case PluginOptionTypeInt:
				err = bindFlag(fs.IntVar, opt, name)
			case PluginOptionTypeUint:
				err = bindFlag(fs.Uint64Var, opt, name)
			default:
				err = fmt.Errorf(
					"unknown plugin option type %d for flag %s",
					opt.Type,
					name,
				)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from the environment. Variables are
// named HUBD_DATABASE_<TYPE>_<PLUGIN>_<OPTION> unless the option defines a
// custom name
func ProcessEnvVars() error {
	for i := range pluginEntries {
		p := &pluginEntries[i]
		for _, opt := range p.Options {
			envName := envVarName(p, opt)
			envVal, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			value, err := parseOptionString(opt, envVal)
			if err != nil {
				return fmt.Errorf("environment variable %s: %w", envName, err)
			}
			if err := opt.assign(value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name
func ProcessConfig(
	pluginConfig map[string]map[string]map[string]any,
) error {
	for typeName, typePlugins := range pluginConfig {
		pluginType, ok := pluginTypeFromName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type: %s", typeName)
		}
		for pluginName, pluginOpts := range typePlugins {
			p := findEntry(pluginType, pluginName)
			if p == nil {
				return fmt.Errorf(
					"unknown %s plugin: %s",
					typeName,
					pluginName,
				)
			}
			for _, opt := range p.Options {
				value, ok := pluginOpts[opt.Name]
				if !ok {
					continue
				}
				if strVal, isStr := value.(string); isStr &&
					opt.Type != PluginOptionTypeString {
					tmpVal, err := parseOptionString(opt, strVal)
					if err != nil {
						return err
					}
					value = tmpVal
				}
				if err := opt.assign(value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseOptionString(opt PluginOption, val string) (any, error) {
	switch opt.Type {
	case PluginOptionTypeString:
		return val, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(val)
	case PluginOptionTypeInt:
		return strconv.Atoi(val)
	case PluginOptionTypeUint:
		return strconv.ParseUint(val, 10, 64)
	default:
		return nil, fmt.Errorf(
			"unknown plugin option type %d for option %s",
			opt.Type,
			opt.Name,
		)
	}
}
