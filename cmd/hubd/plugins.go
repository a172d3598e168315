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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/internal/version"
)

func describePlugins(sb *strings.Builder, heading string, pluginType plugin.PluginType) {
	sb.WriteString(heading + ":\n")
	for _, p := range plugin.GetPlugins(pluginType) {
		fmt.Fprintf(sb, "  %s: %s\n", p.Name, p.Description)
	}
}

// pluginListing returns the plugin list requested with "--blob list" or
// "--metadata list", or an empty string when neither flag asks for one
func pluginListing(blobPlugin, metadataPlugin string) string {
	var sections []func(*strings.Builder)
	if blobPlugin == "list" {
		sections = append(sections, func(sb *strings.Builder) {
			describePlugins(sb, "Available blob plugins", plugin.PluginTypeBlob)
		})
	}
	if metadataPlugin == "list" {
		sections = append(sections, func(sb *strings.Builder) {
			describePlugins(sb, "Available metadata plugins", plugin.PluginTypeMetadata)
		})
	}
	var sb strings.Builder
	for i, section := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		section(&sb)
	}
	return sb.String()
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, _ []string) {
			var sb strings.Builder
			describePlugins(&sb, "Blob storage plugins", plugin.PluginTypeBlob)
			sb.WriteString("\n")
			describePlugins(&sb, "Metadata storage plugins", plugin.PluginTypeMetadata)
			fmt.Fprint(cmd.OutOrStdout(), sb.String())
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version.GetVersionString())
		},
	}
}
