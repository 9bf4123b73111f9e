package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"makeroom/internal/config"
	"makeroom/internal/services"
)

// runFlags are the per-run overrides of the loaded configuration.
type runFlags struct {
	dryRun      bool
	recursive   bool
	noRecursive bool
	budget      string
	crf         int
	outputMode  string
	logLevel    string
	logFormat   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.dryRun, "dry-run", false, "Report what would be converted without writing anything")
	flags.BoolVar(&f.recursive, "recursive", true, "Descend into subdirectories")
	flags.BoolVar(&f.noRecursive, "no-recursive", false, "Only visit the immediate children of path")
	flags.StringVar(&f.budget, "budget", "", "Bytes of qualifying input to process, e.g. 2GB or 1.5GiB (default from config)")
	flags.IntVar(&f.crf, "crf", 0, "Target CRF; videos already at or below it are left alone (default from config)")
	flags.StringVar(&f.outputMode, "output-mode", "", "Video output naming: suffix or container")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format override (console or json)")
	cmd.MarkFlagsMutuallyExclusive("recursive", "no-recursive")
}

// apply folds explicitly set flags into cfg and revalidates it.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("recursive") {
		cfg.Budget.Recursive = f.recursive
	}
	if f.noRecursive {
		cfg.Budget.Recursive = false
	}
	if flags.Changed("budget") {
		budget, err := parseBudget(f.budget)
		if err != nil {
			return err
		}
		cfg.Budget.MaxBytes = budget
	}
	if flags.Changed("crf") {
		cfg.Video.CRF = f.crf
	}
	if flags.Changed("output-mode") {
		cfg.Video.OutputMode = strings.ToLower(strings.TrimSpace(f.outputMode))
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(f.logLevel))
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = strings.ToLower(strings.TrimSpace(f.logFormat))
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "cli", "flags", "", err)
	}
	return nil
}

// parseBudget accepts human sizes such as "2GB", "1.5GiB", or a plain byte count.
func parseBudget(value string) (int64, error) {
	value = strings.TrimSpace(value)
	bytes, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "cli", "budget", fmt.Sprintf("invalid size %q", value), err)
	}
	if bytes == 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "budget", "budget must be positive", nil)
	}
	if bytes > math.MaxInt64 {
		return 0, services.Wrap(services.ErrValidation, "cli", "budget", fmt.Sprintf("%q is too large", value), nil)
	}
	return int64(bytes), nil
}
