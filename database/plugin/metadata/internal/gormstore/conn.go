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

package gormstore

import (
	"strings"

	"github.com/blinklabs-io/hubd/database/plugin"
)

// ConnSettings are the connection parameters of a server-backed dialect.
// A non-empty DSN takes precedence over the individual fields.
type ConnSettings struct {
	Host     string
	Port     uint64
	User     string
	Password string
	Database string
	SSLMode  string
	TimeZone string
	DSN      string
}

// Fill copies any field of defaults into s that s leaves unset. Password
// and DSN never get defaults.
func (s *ConnSettings) Fill(defaults ConnSettings) {
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&s.Host, defaults.Host)
	fill(&s.User, defaults.User)
	fill(&s.Database, defaults.Database)
	fill(&s.SSLMode, defaults.SSLMode)
	fill(&s.TimeZone, defaults.TimeZone)
	if s.Port == 0 {
		s.Port = defaults.Port
	}
	s.DSN = strings.TrimSpace(s.DSN)
}

// PluginOptions binds every setting in s to a plugin option, using the
// current values as defaults. When envPrefix is set, each option also
// reads <envPrefix>_<NAME> from the environment.
func (s *ConnSettings) PluginOptions(
	dialect string,
	envPrefix string,
) []plugin.PluginOption {
	str := func(name, env, desc string, dest *string) plugin.PluginOption {
		ret := plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  dialect + " " + desc,
			DefaultValue: *dest,
			Dest:         dest,
		}
		if envPrefix != "" {
			ret.CustomEnvVar = envPrefix + "_" + env
		}
		return ret
	}
	port := plugin.PluginOption{
		Name:         "port",
		Type:         plugin.PluginOptionTypeUint,
		Description:  dialect + " port",
		DefaultValue: s.Port,
		Dest:         &s.Port,
	}
	if envPrefix != "" {
		port.CustomEnvVar = envPrefix + "_PORT"
	}
	return []plugin.PluginOption{
		str("host", "HOST", "host", &s.Host),
		port,
		str("user", "USER", "user", &s.User),
		str("password", "PASSWORD", "password (required)", &s.Password),
		str("database", "DATABASE", "database name", &s.Database),
		str("ssl-mode", "SSLMODE", "TLS/SSL mode", &s.SSLMode),
		str("timezone", "TIMEZONE", "time zone", &s.TimeZone),
		str("dsn", "DSN", "DSN (overrides the other options when set)", &s.DSN),
	}
}
