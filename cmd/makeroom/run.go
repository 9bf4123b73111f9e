package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"makeroom/internal/avif"
	"makeroom/internal/classify"
	"makeroom/internal/config"
	"makeroom/internal/encoding"
	"makeroom/internal/logging"
	"makeroom/internal/metrics"
	"makeroom/internal/preflight"
	"makeroom/internal/runlock"
	"makeroom/internal/services"
	"makeroom/internal/walker"
)

// runReclaim performs one budgeted pass over root and prints the summary.
func runReclaim(cmd *cobra.Command, cfg *config.Config, root string, dryRun bool) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	resolved, err := config.ExpandPath(root)
	if err != nil {
		return services.Wrap(services.ErrValidation, "cli", "resolve root", root, err)
	}
	root = resolved

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	logger.Debug("run lock acquired", logging.String("lock", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release run lock", logging.Error(err))
		}
	}()

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx := services.WithRunID(signalCtx, uuid.NewString())
	logger = logging.WithContext(ctx, logger)

	mode := preflight.ModeConvert
	if dryRun {
		mode = preflight.ModeReport
	}
	if err := preflight.FirstFailure(preflight.RunAll(cfg, root, mode)); err != nil {
		logger.Error("preflight failed", logging.Error(err))
		return err
	}
	if err := preflight.RequireTools(preflight.CheckSystemDeps(ctx, cfg, mode)); err != nil {
		logger.Error("required tools unavailable", logging.Error(err))
		return err
	}

	avif.Startup(logger)
	defer avif.Shutdown()

	logger.Info("makeroom run starting",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("root", root),
		logging.Int("crf", cfg.Video.CRF),
		logging.String("output_mode", cfg.Video.OutputMode),
		logging.String("libvips", avif.Version()),
	)

	w := walker.New(classify.New(cfg, logger), encoding.New(cfg, logger), logger)
	result, err := w.Walk(ctx, root, walker.Options{
		Recursive: cfg.Budget.Recursive,
		Budget:    cfg.Budget.MaxBytes,
		DryRun:    dryRun,
	})
	if err != nil {
		logger.Error("walk aborted", logging.Error(err))
		return err
	}

	if path := cfg.Metrics.Textfile; path != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(result, time.Now())
		if err := recorder.WriteTextfile(path); err != nil {
			logger.Warn("metrics export failed", logging.String("textfile", path), logging.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSummary(result, shouldColorize(out)))

	if result.Interrupted {
		return &exitError{code: exitInterrupted, err: context.Canceled}
	}
	return nil
}
