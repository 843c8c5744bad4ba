// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dgroup"
	"github.com/datawire/dlib/dlog"
	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wimleers/fpstream/lib/ingest"
	"github.com/wimleers/fpstream/lib/mining"
)

// version is reported by cobra's built-in --version flag (set via
// cmd.Version below); there is no release process yet to stamp this
// at build time.
const version = "dev"

type logLevelFlag struct {
	logrus.Level
}

func (lvl *logLevelFlag) Type() string { return "loglevel" }
func (lvl *logLevelFlag) Set(str string) error {
	var err error
	lvl.Level, err = logrus.ParseLevel(str)
	return err
}

var _ pflag.Value = (*logLevelFlag)(nil)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fpstream-mine: error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := defaultConfig()
	logLevel := logLevelFlag{Level: logrus.InfoLevel}

	argparser := &cobra.Command{
		Use:     "fpstream-mine {[flags]|SUBCOMMAND}",
		Short:   "Mine association rules from a sequence of transaction batches",
		Version: version,

		Args: cliutil.WrapPositionalArgs(cliutil.OnlySubcommands),
		RunE: cliutil.RunSubcommands,

		SilenceErrors: true, // main() reports the error itself
		SilenceUsage:  true, // our FlagErrorFunc handles it

		CompletionOptions: cobra.CompletionOptions{ //nolint:exhaustivestruct
			DisableDefaultCmd: true,
		},
	}
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)

	argparser.PersistentFlags().Var(&logLevel, "verbosity", "set the verbosity")
	argparser.PersistentFlags().Float64Var(&cfg.MinSupport, "min-support", cfg.MinSupport,
		"minimum relative support a pattern must maintain to be retained")
	argparser.PersistentFlags().Float64Var(&cfg.MaxSupportError, "max-support-error", cfg.MaxSupportError,
		"maximum relative support error tolerated (FP-Stream's epsilon)")
	argparser.PersistentFlags().Float64Var(&cfg.EventsPerTransaction, "events-per-transaction", cfg.EventsPerTransaction,
		"events bundled per transaction in each batch, for batch-size adjustment")
	argparser.PersistentFlags().StringArrayVar(&cfg.RequireNames, "require", nil,
		"require this item (or `glob*`) in every mined itemset")
	argparser.PersistentFlags().StringArrayVar(&cfg.ExcludeNames, "exclude", nil,
		"exclude this item (or `glob*`) from every mined itemset")
	argparser.PersistentFlags().StringArrayVar(&cfg.ConsequentNames, "consequent", nil,
		"restrict rule consequents to this item (or `glob*`)")

	argparser.AddCommand(newIngestCommand(&cfg, &logLevel))
	argparser.AddCommand(newRulesCommand(&cfg, &logLevel))

	return argparser.ExecuteContext(context.Background())
}

// withLoggedGroup wraps runE so that, like the reference CLI's
// per-subcommand RunE, every subcommand installs its own logger on the
// context and runs inside a signal-handling dgroup before doing any
// work.
func withLoggedGroup(logLevel *logLevelFlag, runE func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := logrus.New()
		logger.SetLevel(logLevel.Level)
		ctx := dlog.WithLogger(cmd.Context(), dlog.WrapLogrus(logger))

		grp := dgroup.NewGroup(ctx, dgroup.GroupConfig{
			EnableSignalHandling: true,
		})
		grp.Go("main", func(ctx context.Context) error {
			return runE(ctx, args)
		})
		return grp.Wait()
	}
}

// buildCoordinator constructs a coordinator from cfg, registers its
// constraints, and feeds it one batch per file in batchFiles, in
// order. Every subcommand re-derives the coordinator's state this way
// since nothing is persisted between invocations.
func buildCoordinator(ctx context.Context, cfg *Config, batchFiles []string) (*mining.Coordinator, error) {
	coordinator, err := mining.NewCoordinator(cfg.MinSupport, cfg.MaxSupportError)
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.RequireNames {
		coordinator.SetFrequentItemsetConstraint(mining.ItemName(name), mining.PositiveMatchAll)
	}
	for _, name := range cfg.ExcludeNames {
		coordinator.SetFrequentItemsetConstraint(mining.ItemName(name), mining.NegativeMatchAll)
	}
	for _, name := range cfg.ConsequentNames {
		coordinator.SetRuleConsequentConstraint(mining.ItemName(name), mining.PositiveMatchAny)
	}

	for _, path := range batchFiles {
		batch, err := ingest.ReadBatchFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading batch %q: %w", path, err)
		}
		dlog.Infof(ctx, "processing batch %q: %d transactions", path, len(batch))
		if err := coordinator.ProcessBatch(batch, cfg.EventsPerTransaction); err != nil {
			return nil, fmt.Errorf("processing batch %q: %w", path, err)
		}
	}
	return coordinator, nil
}
