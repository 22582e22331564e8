// Package app runs a QC pass over every platform in a report source.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrissnell/marineqc/internal/pipeline"
	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/internal/storage"
	"github.com/chrissnell/marineqc/pkg/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App represents the main application
type App struct {
	cfg    *config.Config
	source storage.Source
	sink   storage.Sink
	logger *zap.SugaredLogger
}

// New creates a new application instance. sink may be nil, in which case
// flags are computed and summarised but not stored.
func New(cfg *config.Config, source storage.Source, sink storage.Sink, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		source: source,
		sink:   sink,
		logger: logger,
	}
}

// RunWithSignals runs a QC pass, cancelling it on SIGINT or SIGTERM.
func (a *App) RunWithSignals(ctx context.Context) (*Summary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// Run checks every platform from the source, stores the flags in the sink
// and returns a summary. Platforms run in parallel on up to Run.Workers
// goroutines. A platform that exceeds Run.PlatformTimeout keeps the flags of
// the checks that finished and is counted as timed out; a check error is
// recorded in the summary without stopping the run. Run fails only if the
// configuration is invalid, the source or sink fails, or ctx ends.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	started := time.Now()
	logger := a.logger.With("run_id", runID)

	voyages, err := a.source.Voyages(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load reports: %w", err)
	}
	logger.Infow("starting QC run", "platforms", len(voyages), "workers", a.cfg.Run.Workers)

	if a.sink != nil {
		if err := a.sink.BeginRun(ctx, runID, started); err != nil {
			return nil, err
		}
	}

	results := make([]*pipeline.Result, len(voyages))
	timedOut := make([]bool, len(voyages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Run.Workers)
	for i, v := range voyages {
		g.Go(func() error {
			res, err := a.checkPlatform(gctx, v)
			switch {
			case err == nil:
			case errors.Is(err, context.DeadlineExceeded) && gctx.Err() == nil:
				timedOut[i] = true
				logger.Warnw("platform timed out", "platform", v.PlatformID(), "timeout", a.cfg.Run.PlatformTimeout)
			default:
				return err
			}
			results[i] = res

			if a.sink != nil {
				if err := a.sink.SaveFlags(gctx, runID, v); err != nil {
					return fmt.Errorf("could not save flags for platform %s: %w", v.PlatformID(), err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(runID, started, results, timedOut, a.cfg.Run.MaxLoggedErrors)
	if a.sink != nil {
		stats := storage.RunStats{
			Finished:  summary.Finished,
			Platforms: summary.Platforms,
			Reports:   summary.Reports,
			Errors:    summary.CheckErrors,
		}
		if err := a.sink.FinishRun(ctx, runID, stats); err != nil {
			return nil, err
		}
	}

	logger.Infow("QC run complete", "platforms", summary.Platforms, "reports", summary.Reports,
		"check_errors", summary.CheckErrors, "timed_out", summary.TimedOut,
		"elapsed", summary.Finished.Sub(started).Round(time.Millisecond))
	return summary, nil
}

// checkPlatform runs the pipeline for one platform under the per-platform
// timeout.
func (a *App) checkPlatform(ctx context.Context, v *report.Voyage) (*pipeline.Result, error) {
	if a.cfg.Run.PlatformTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Run.PlatformTimeout)
		defer cancel()
	}
	return pipeline.Run(ctx, v, a.cfg)
}
