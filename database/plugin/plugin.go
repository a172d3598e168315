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
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type Plugin interface {
	Start() error
	Stop() error
}

// StartOptions carries process-wide dependencies into plugin constructors
type StartOptions struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// ErrorPlugin is a plugin that always returns an error on Start()
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

// NewErrorPlugin creates a new error plugin that returns the given error on Start()
func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// StartPlugin gets a plugin from the registry and starts it
func StartPlugin(
	pluginType PluginType,
	pluginName string,
	opts StartOptions,
) (Plugin, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p := GetPlugin(pluginType, pluginName, opts)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption sets the value of a named option for a plugin entry. This
// is used by callers that need to programmatically override plugin defaults
// (for example to set data-dir before starting a plugin). Setting an option
// that the plugin does not define is not an error.
// NOTE: this writes directly to the plugin's option destinations and must be
// called before the plugin is instantiated.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	p := findEntry(pluginType, pluginName)
	if p == nil {
		return fmt.Errorf(
			"plugin %s of type %s not found",
			pluginName,
			PluginTypeName(pluginType),
		)
	}
	for _, opt := range p.Options {
		if opt.Name != optionName {
			continue
		}
		return opt.assign(value)
	}
	return nil
}

func (o PluginOption) typeError(value any, want string) error {
	return fmt.Errorf("option %s: got %T, want %s", o.Name, value, want)
}

// store writes value through the option's destination pointer
func store[T any](o PluginOption, value T) error {
	dest, ok := o.Dest.(*T)
	if !ok || dest == nil {
		return fmt.Errorf(
			"option %s: destination is %T, want *%T",
			o.Name,
			o.Dest,
			value,
		)
	}
	*dest = value
	return nil
}

// assign stores value if it matches the option type. Uint options also
// take non-negative ints, which is what YAML decoding produces.
func (o PluginOption) assign(value any) error {
	if o.Dest == nil {
		return fmt.Errorf("nil destination for option %s", o.Name)
	}
	switch o.Type {
	case PluginOptionTypeString:
		if v, ok := value.(string); ok {
			return store(o, v)
		}
		return o.typeError(value, "string")
	case PluginOptionTypeBool:
		if v, ok := value.(bool); ok {
			return store(o, v)
		}
		return o.typeError(value, "bool")
	case PluginOptionTypeInt:
		if v, ok := value.(int); ok {
			return store(o, v)
		}
		return o.typeError(value, "int")
	case PluginOptionTypeUint:
		switch v := value.(type) {
		case uint64:
			return store(o, v)
		case int:
			if v < 0 {
				return fmt.Errorf("option %s: negative value %d", o.Name, v)
			}
			return store(o, uint64(v))
		}
		return o.typeError(value, "uint64")
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			o.Type,
			o.Name,
		)
	}
}
