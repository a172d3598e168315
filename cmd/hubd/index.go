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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/hub"
	"github.com/blinklabs-io/hubd/internal/config"
	"github.com/spf13/cobra"
)

var indexFlags = struct {
	offset     int
	limit      int
	descending bool
}{}

// indexRun prints one page of a hub's content index as JSON lines
func indexRun(cmd *cobra.Command, handle string, cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if debug {
		logger = slog.New(
			slog.NewJSONHandler(
				os.Stderr,
				&slog.HandlerOptions{Level: slog.LevelDebug},
			),
		)
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		Logger:         logger,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	manager, err := hub.NewManager(hub.ManagerConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	entry, err := manager.HubByHandle(cmd.Context(), handle)
	if err != nil {
		return fmt.Errorf("hub %q: %w", handle, err)
	}
	entries, total, err := manager.Content(
		cmd.Context(),
		entry.Address,
		indexFlags.offset,
		indexFlags.limit,
		indexFlags.descending,
	)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	fmt.Fprintf(
		cmd.ErrOrStderr(),
		"showing %d of %d entries for hub %s\n",
		len(entries),
		total,
		entry.Address,
	)
	return nil
}

func indexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <handle>",
		Short: "Print the content index of a hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			return indexRun(cmd, args[0], cfg)
		},
	}
	cmd.Flags().IntVar(&indexFlags.offset, "offset", 0, "number of entries to skip")
	cmd.Flags().IntVar(&indexFlags.limit, "limit", 100, "maximum number of entries to print")
	cmd.Flags().BoolVar(&indexFlags.descending, "desc", false, "newest entries first")
	return cmd
}
