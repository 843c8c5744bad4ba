// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"

	"git.lukeshu.com/go/lowmemjson"
	"github.com/spf13/cobra"
)

// newIngestCommand builds the "ingest" subcommand: it feeds the given
// batch files through a fresh coordinator and dumps the resulting
// pattern tree as JSON, for diagnosing what a given set of batches
// would cause the engine to retain -- it does not persist anything
// for a later "rules" invocation to pick up.
func newIngestCommand(cfg *Config, logLevel *logLevelFlag) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest BATCH_FILE...",
		Short: "Process transaction batches and print the resulting pattern tree",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = withLoggedGroup(logLevel, func(ctx context.Context, args []string) error {
		coordinator, err := buildCoordinator(ctx, cfg, args)
		if err != nil {
			return err
		}
		return lowmemjson.Encode(os.Stdout, coordinator.Snapshot())
	})
	return cmd
}
