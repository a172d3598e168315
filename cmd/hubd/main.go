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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/internal/config"
	"github.com/blinklabs-io/hubd/internal/version"
)

const programName = "hubd"

var (
	debug      bool
	configFile string
)

// newLogger installs the process-wide JSON logger and sizes GOMAXPROCS
// to the container quota
func newLogger() (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts)).
		With("component", programName)
	slog.SetDefault(logger)
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Info(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		return nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	logger.Info("version: " + version.GetVersionString())
	return logger, nil
}

// configFrom returns the config stashed by the root pre-run hook
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	return cfg, nil
}

// loadConfig reads the config file and environment, then applies the
// --blob/--metadata flags when they were given explicitly
func loadConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	blobPlugin, _ := flags.GetString("blob")
	metadataPlugin, _ := flags.GetString("metadata")
	if out := pluginListing(blobPlugin, metadataPlugin); out != "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.Changed("blob") {
		cfg.BlobPlugin = blobPlugin
	}
	if flags.Changed("metadata") {
		cfg.MetadataPlugin = metadataPlugin
	}
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func newRootCommand() (*cobra.Command, error) {
	serve := serveCommand()
	rootCmd := &cobra.Command{
		Use:               programName,
		Short:             "Permissioned hub publishing service",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		// With no subcommand the service runs
		RunE: serve.RunE,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&debug, "debug", "D", false, "enable debug logging")
	pf.StringVar(&configFile, "config", "", "path to config file")
	pf.StringP("blob", "b", config.DefaultBlobPlugin, "blob store plugin to use, 'list' to show available")
	pf.StringP("metadata", "m", config.DefaultMetadataPlugin, "metadata store plugin to use, 'list' to show available")
	if err := plugin.PopulateCmdlineOptions(pf); err != nil {
		return nil, fmt.Errorf("adding plugin flags: %w", err)
	}

	rootCmd.AddCommand(
		serve,
		indexCommand(),
		listCommand(),
		versionCommand(),
	)
	return rootCmd, nil
}

func main() {
	rootCmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// cobra has already printed the error
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
