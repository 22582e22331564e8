// Package storage defines the interfaces between the QC run and the places
// reports come from and flags go to.
package storage

import (
	"context"
	"time"

	"github.com/chrissnell/marineqc/internal/report"
)

// Source provides the reports to check, one voyage per platform ID.
type Source interface {
	Voyages(ctx context.Context) ([]*report.Voyage, error)
}

// Sink persists the flags produced by a QC run.
type Sink interface {
	BeginRun(ctx context.Context, runID string, started time.Time) error
	SaveFlags(ctx context.Context, runID string, v *report.Voyage) error
	FinishRun(ctx context.Context, runID string, stats RunStats) error
}

// RunStats are the totals recorded against a finished run.
type RunStats struct {
	Finished  time.Time
	Platforms int
	Reports   int
	Errors    int
}
