package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"makeroom/internal/classify"
	"makeroom/internal/encoding"
	"makeroom/internal/logging"
	"makeroom/internal/services"
)

// Walker drives classification and conversion over a tree.
type Walker struct {
	classifier Classifier
	converter  Converter
	logger     *slog.Logger
}

// New constructs a Walker.
func New(classifier Classifier, converter Converter, logger *slog.Logger) *Walker {
	return &Walker{
		classifier: classifier,
		converter:  converter,
		logger:     logging.NewComponentLogger(logger, "walker"),
	}
}

// walkState is the mutable state of a single Walk call.
type walkState struct {
	opts    Options
	capped  bool
	stopped bool
	result  *Result
}

func (s *walkState) exhausted() bool {
	return s.capped && s.result.BytesProcessed >= s.opts.Budget
}

// Walk processes root. A regular file is handled alone, uncapped; a directory
// is enumerated under opts. The returned error is non-nil only when root
// cannot be walked at all.
func (w *Walker) Walk(ctx context.Context, root string, opts Options) (Result, error) {
	started := time.Now()
	result := Result{Root: root, Options: opts}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, services.Wrap(services.ErrNotFound, "walker", "stat root", root, err)
		}
		return result, services.Wrap(services.ErrValidation, "walker", "stat root", root, err)
	}

	logger := logging.WithContext(ctx, w.logger)
	state := &walkState{opts: opts, result: &result}

	switch {
	case info.Mode().IsRegular():
		logger.Info("processing single file",
			logging.Path(root),
			logging.Bool("dry_run", opts.DryRun),
		)
		w.processFile(ctx, state, root, info)
	case info.IsDir():
		if opts.Budget <= 0 {
			return result, services.Wrap(services.ErrValidation, "walker", "budget", fmt.Sprintf("budget must be positive, got %d", opts.Budget), nil)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			return result, services.Wrap(services.ErrValidation, "walker", "read root", root, err)
		}
		state.capped = true
		logger.Info("walk started",
			logging.String("root", root),
			logging.Int64("budget_bytes", opts.Budget),
			logging.Bool("recursive", opts.Recursive),
			logging.Bool("dry_run", opts.DryRun),
		)
		w.walkDir(ctx, state, root, entries)
	default:
		return result, services.Wrap(services.ErrValidation, "walker", "stat root", root+" is neither a regular file nor a directory", nil)
	}

	result.BudgetReached = state.exhausted()
	result.Elapsed = time.Since(started)
	logger.Info("walk finished",
		logging.Int64("bytes_processed", result.BytesProcessed),
		logging.Int("converted", result.Converted),
		logging.Int("reported", result.Reported),
		logging.Int("failed", result.Failed),
		logging.Bool("budget_reached", result.BudgetReached),
		logging.Bool("interrupted", result.Interrupted),
	)
	return result, nil
}

func (w *Walker) walkDir(ctx context.Context, state *walkState, dir string, entries []os.DirEntry) {
	for _, entry := range entries {
		if state.stopped {
			return
		}
		if ctx.Err() != nil {
			state.result.Interrupted = true
			state.stopped = true
			return
		}

		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		switch {
		case mode.IsDir():
			if !state.opts.Recursive {
				continue
			}
			if state.exhausted() {
				state.stopped = true
				return
			}
			children, err := os.ReadDir(path)
			if err != nil {
				w.logReadDirError(ctx, path, err)
				continue
			}
			w.walkDir(ctx, state, path, children)

		case mode&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if state.exhausted() {
				state.stopped = true
				return
			}
			w.processFile(ctx, state, path, info)

		case mode.IsRegular():
			if state.exhausted() {
				state.stopped = true
				return
			}
			info, err := entry.Info()
			if err != nil {
				w.skipVanished(ctx, state, path, err)
				continue
			}
			w.processFile(ctx, state, path, info)
		}
	}
}

func (w *Walker) processFile(ctx context.Context, state *walkState, path string, info fs.FileInfo) {
	ctx = services.WithPath(ctx, path)
	logger := logging.WithContext(ctx, w.logger)
	result := state.result
	result.Visited++

	class, err := w.classifier.Classify(ctx, path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			w.skipVanished(ctx, state, path, err)
		case ctx.Err() != nil:
			result.Interrupted = true
			state.stopped = true
		default:
			logger.Warn("classification failed; skipping", logging.Error(err))
			result.Skipped++
			result.Outcomes = append(result.Outcomes, Outcome{
				Path:       path,
				Kind:       class.Kind,
				Action:     ActionSkipped,
				Reason:     ReasonClassifyFailed,
				CRF:        classify.UnknownCRF,
				InputBytes: info.Size(),
				Err:        err,
			})
		}
		return
	}

	outcome := Outcome{Path: path, Kind: class.Kind, CRF: class.CRF, InputBytes: info.Size()}
	if !class.Qualifies {
		result.Skipped++
		if class.Kind != classify.KindVideo {
			logger.Debug("not a convertible media file", logging.String("mime", class.MIME))
			return
		}
		logger.Debug("already efficient", logging.Int("crf", class.CRF))
		outcome.Action = ActionSkipped
		outcome.Reason = ReasonAlreadyEfficient
		result.Outcomes = append(result.Outcomes, outcome)
		return
	}

	outcome.Output = w.converter.OutputPath(path, class.Kind)
	if _, err := os.Lstat(outcome.Output); err == nil {
		w.skipExisting(logger, state, outcome)
		return
	}

	if state.opts.DryRun {
		logger.Info("would convert",
			logging.String("kind", class.Kind.String()),
			logging.String("size", encoding.FormatMB(outcome.InputBytes)),
			logging.String("output", outcome.Output),
		)
		outcome.Action = ActionReported
		result.Reported++
		w.advance(logger, state, outcome)
		return
	}

	converted, err := w.converter.Convert(ctx, path, class.Kind)
	outcome.Elapsed = converted.Elapsed
	if err != nil {
		switch {
		case errors.Is(err, encoding.ErrOutputExists):
			w.skipExisting(logger, state, outcome)
		case errors.Is(err, fs.ErrNotExist):
			w.skipVanished(ctx, state, path, err)
		case ctx.Err() != nil:
			result.Interrupted = true
			state.stopped = true
			logger.Warn("conversion interrupted", logging.String("output", outcome.Output))
		default:
			logger.Error("conversion failed", logging.String("output", outcome.Output), logging.Error(err))
			outcome.Action = ActionFailed
			outcome.Err = err
			result.Failed++
			result.Outcomes = append(result.Outcomes, outcome)
		}
		return
	}

	outcome.Action = ActionConverted
	outcome.Output = converted.Output
	outcome.OutputBytes = converted.OutputBytes
	result.Converted++
	result.OutputBytes += converted.OutputBytes
	logger.Info("converted",
		logging.String("kind", class.Kind.String()),
		logging.String("input_size", encoding.FormatMB(outcome.InputBytes)),
		logging.String("output", converted.Output),
		logging.String("output_size", encoding.FormatMB(converted.OutputBytes)),
		logging.Duration("elapsed", converted.Elapsed.Round(time.Millisecond)),
	)
	w.advance(logger, state, outcome)
}

// advance folds a qualifying file into the running total.
func (w *Walker) advance(logger *slog.Logger, state *walkState, outcome Outcome) {
	result := state.result
	result.BytesProcessed += outcome.InputBytes
	result.Outcomes = append(result.Outcomes, outcome)
	if state.exhausted() {
		logger.Info("budget reached",
			logging.Int64("bytes_processed", result.BytesProcessed),
			logging.Int64("budget_bytes", state.opts.Budget),
		)
	}
}

func (w *Walker) skipExisting(logger *slog.Logger, state *walkState, outcome Outcome) {
	logger.Info("output exists; skipping", logging.String("output", outcome.Output))
	outcome.Action = ActionSkipped
	outcome.Reason = ReasonOutputExists
	state.result.Skipped++
	state.result.Outcomes = append(state.result.Outcomes, outcome)
}

func (w *Walker) skipVanished(ctx context.Context, state *walkState, path string, err error) {
	logging.WithContext(services.WithPath(ctx, path), w.logger).Debug("file vanished; skipping", logging.Error(err))
	state.result.Skipped++
}

func (w *Walker) logReadDirError(ctx context.Context, path string, err error) {
	logger := logging.WithContext(services.WithPath(ctx, path), w.logger)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("directory vanished; skipping", logging.Error(err))
		return
	}
	logger.Warn("cannot read directory; skipping", logging.Error(err))
}
