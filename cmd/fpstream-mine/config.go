// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package main

// Config holds the coordinator-construction parameters shared by every
// subcommand, all settable via persistent flags on the root command.
// There is no persisted configuration file -- every invocation builds
// a fresh coordinator and re-reads the batch files named on its own
// command line, matching the core's non-goal of persistence across
// process restarts.
type Config struct {
	MinSupport           float64
	MaxSupportError      float64
	EventsPerTransaction float64

	RequireNames    []string
	ExcludeNames    []string
	ConsequentNames []string
}

func defaultConfig() Config {
	return Config{
		MinSupport:           0.4,
		MaxSupportError:      0.05,
		EventsPerTransaction: 1,
	}
}

// RulesConfig holds the extra parameters specific to the "rules"
// subcommand's query over the pattern tree.
type RulesConfig struct {
	From          int
	To            int
	MinConfidence float64
}

func defaultRulesConfig() RulesConfig {
	return RulesConfig{
		From:          0,
		To:            0,
		MinConfidence: 0.8,
	}
}
