package app

import (
	"time"

	"github.com/chrissnell/marineqc/internal/log"
	"github.com/chrissnell/marineqc/internal/pipeline"
	"github.com/chrissnell/marineqc/internal/report"
)

// Summary describes a completed QC run.
type Summary struct {
	RunID     string         `json:"run_id"`
	Started   time.Time      `json:"started"`
	Finished  time.Time      `json:"finished"`
	Platforms int            `json:"platforms"`
	Reports   int            `json:"reports"`
	Classes   map[string]int `json:"classes"`
	Checks    []CheckSummary `json:"checks"`
	TimedOut  int            `json:"timed_out"`

	CheckErrors   int         `json:"check_errors"`
	Errors        []log.Entry `json:"errors,omitempty"`
	ErrorsDropped int         `json:"errors_dropped,omitempty"`
}

// CheckSummary totals one check across every platform it ran on.
type CheckSummary struct {
	Check     string `json:"check"`
	Evaluated int    `json:"evaluated_platforms"`
	Skipped   int    `json:"skipped_platforms"`
	Reports   int    `json:"reports"`
	Failed    int    `json:"failed"`
}

func summarize(runID string, started time.Time, results []*pipeline.Result, timedOut []bool, maxErrors int) *Summary {
	s := &Summary{
		RunID:    runID,
		Started:  started,
		Finished: time.Now(),
		Classes:  map[string]int{},
	}

	errs := log.NewBuffer(maxErrors)
	totals := map[report.Check]*CheckSummary{}

	for i, res := range results {
		if res == nil {
			continue
		}
		s.Platforms++
		s.Reports += res.Reports
		s.Classes[res.Class.String()]++
		if timedOut[i] {
			s.TimedOut++
		}

		for _, o := range res.Outcomes {
			cs, ok := totals[o.Check]
			if !ok {
				cs = &CheckSummary{Check: o.Check.String()}
				totals[o.Check] = cs
			}
			if o.Evaluated {
				cs.Evaluated++
			} else {
				cs.Skipped++
			}
			cs.Reports += o.Reports
			cs.Failed += o.Failed
		}

		for _, e := range res.Errors {
			s.CheckErrors++
			errs.Add(log.Entry{
				Level:    "error",
				Platform: e.Platform,
				Message:  e.Err.Error(),
				Fields:   map[string]any{"check": e.Step},
			})
		}
	}

	for _, c := range report.Checks() {
		if cs, ok := totals[c]; ok {
			s.Checks = append(s.Checks, *cs)
		}
	}
	s.Errors, s.ErrorsDropped = errs.Entries()
	return s
}
