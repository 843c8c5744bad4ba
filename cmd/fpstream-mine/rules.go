// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"
)

// newRulesCommand builds the "rules" subcommand: it feeds the given
// batch files through a fresh coordinator, then mines and prints
// association rules over the bucket range named by its own flags.
func newRulesCommand(cfg *Config, logLevel *logLevelFlag) *cobra.Command {
	rulesCfg := defaultRulesConfig()

	cmd := &cobra.Command{
		Use:   "rules BATCH_FILE...",
		Short: "Process transaction batches and print mined association rules",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().IntVar(&rulesCfg.From, "from", rulesCfg.From,
		"newest-to-oldest bucket range start (0=most recent quarter) to mine rules over")
	cmd.Flags().IntVar(&rulesCfg.To, "to", rulesCfg.To,
		"newest-to-oldest bucket range end to mine rules over")
	cmd.Flags().Float64Var(&rulesCfg.MinConfidence, "min-confidence", rulesCfg.MinConfidence,
		"minimum rule confidence")

	cmd.RunE = withLoggedGroup(logLevel, func(ctx context.Context, args []string) error {
		coordinator, err := buildCoordinator(ctx, cfg, args)
		if err != nil {
			return err
		}

		rules, err := coordinator.MineRules(rulesCfg.From, rulesCfg.To, rulesCfg.MinConfidence)
		if err != nil {
			return err
		}
		dlog.Infof(ctx, "mined %d association rules", len(rules))

		for _, view := range coordinator.RenderRules(rules) {
			fmt.Printf("%v => %v (support=%d, confidence=%.3f)\n",
				view.Antecedent, view.Consequent, view.Support, view.Confidence)
		}
		return nil
	})
	return cmd
}
