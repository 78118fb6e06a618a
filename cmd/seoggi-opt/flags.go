package main

import (
	"github.com/urfave/cli/v2"
)

const (
	flagConfig    = "config"
	flagDebug     = "debug"
	flagVerbosity = "verbosity"
	flagLogFile   = "log-file"

	flagOut     = "out"
	flagPrint   = "print"
	flagPasses  = "passes"
	flagMetrics = "metrics"
	flagSummary = "summary"
)

var (
	globalFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to a seoggi.toml file. By default seoggi.toml is looked up from the input's directory upwards.",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"d"},
			Usage:   "Print phase progress.",
		},
		&cli.IntFlag{
			Name:    flagVerbosity,
			Aliases: []string{"v"},
			Value:   -1,
			Usage:   "Log verbosity. Overrides log.verbosity from the configuration.",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "Write logs to this file instead of stderr.",
		},
	}

	runFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagOut,
			Aliases: []string{"o"},
			Usage:   "Write the optimized module to this file.",
		},
		&cli.BoolFlag{
			Name:  flagPrint,
			Usage: "Print the optimized module as text.",
		},
		&cli.StringSliceFlag{
			Name:  flagPasses,
			Usage: "Passes to run, in order. Overrides pipeline.passes from the configuration.",
		},
		&cli.StringFlag{
			Name:  flagMetrics,
			Usage: "Write per-pass metrics in Prometheus text format to this file, or - for stdout.",
		},
		&cli.BoolFlag{
			Name:  flagSummary,
			Usage: "Print a summary of the run.",
		},
	}
)

func mergeFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}
