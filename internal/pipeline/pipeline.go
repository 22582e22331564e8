// Package pipeline runs the QC checks that apply to one platform, in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/marineqc/internal/drifter"
	"github.com/chrissnell/marineqc/internal/log"
	"github.com/chrissnell/marineqc/internal/peel"
	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/internal/trackcheck"
	"github.com/chrissnell/marineqc/pkg/config"
)

// Class groups platforms that share a check sequence.
type Class int

const (
	Ship Class = iota
	Moored
	Drifter
)

func (c Class) String() string {
	switch c {
	case Moored:
		return "moored buoy"
	case Drifter:
		return "drifting buoy"
	default:
		return "ship"
	}
}

// ClassOf picks the check sequence for a platform type.
func ClassOf(platformType int) Class {
	switch platformType {
	case report.DriftingBuoy:
		return Drifter
	case report.MooredBuoy:
		return Moored
	default:
		return Ship
	}
}

// step is one check in a sequence. It returns an outcome per flag it owns.
type step struct {
	name string
	run  func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error)
}

func single(o report.Outcome, err error) ([]report.Outcome, error) {
	if err != nil {
		return nil, err
	}
	return []report.Outcome{o}, nil
}

var (
	trackStep = step{"track", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		res, err := trackcheck.Check(v, cfg.TrackCheck)
		if err != nil {
			return nil, err
		}
		return res.Outcomes(), nil
	}}
	iquamStep = step{"iquam", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		return single(peel.IQuamCheck(v, cfg.IQuam))
	}}
	spikeStep = step{"spike", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		return single(peel.SpikeCheck(v, cfg.Spike))
	}}
	agroundStep = step{"aground", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		return single(drifter.AgroundCheck(v, cfg.Aground))
	}}
	speedStep = step{"speed", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		return single(drifter.SpeedCheck(v, cfg.Speed))
	}}
	newSpeedStep = step{"new speed", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		return single(drifter.NewSpeedCheck(v, cfg.NewSpeed, cfg.IQuam))
	}}
	tailStep = step{"sst tail", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		res, err := drifter.SSTTailCheck(v, cfg.Tail, cfg.Background)
		if err != nil {
			return nil, err
		}
		return res.Outcomes(), nil
	}}
	biasNoiseStep = step{"sst bias/noise", func(v *report.Voyage, cfg *config.Config) ([]report.Outcome, error) {
		res, err := drifter.SSTBiasedNoisyCheck(v, cfg.BiasNoise, cfg.Background)
		if err != nil {
			return nil, err
		}
		return res.Outcomes(), nil
	}}
)

var sequences = map[Class][]step{
	Ship:    {trackStep, iquamStep, spikeStep},
	Moored:  {iquamStep, spikeStep},
	Drifter: {iquamStep, spikeStep, agroundStep, speedStep, newSpeedStep, tailStep, biasNoiseStep},
}

// Steps lists the check names run for a class, in order.
func Steps(c Class) []string {
	var names []string
	for _, s := range sequences[c] {
		names = append(names, s.name)
	}
	return names
}

// CheckError records a check that could not complete for a platform.
type CheckError struct {
	Platform string
	Step     string
	Err      error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("platform %s: %s: %v", e.Platform, e.Step, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Result is what the checks found for one platform.
type Result struct {
	Platform string
	Class    Class
	Reports  int
	Outcomes []report.Outcome
	Errors   []*CheckError
}

// Err joins the check errors, or returns nil when every check completed.
func (r *Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Run sorts the voyage and runs the checks for its platform class. A check
// that fails with an error leaves its flags unset and the remaining checks
// still run. Run only returns an error when ctx ends before the sequence
// completes; the partial result is returned with it.
func Run(ctx context.Context, v *report.Voyage, cfg *config.Config) (*Result, error) {
	res := &Result{
		Platform: v.PlatformID(),
		Class:    ClassOf(v.PlatformType()),
		Reports:  v.Len(),
	}
	logger := log.With("platform", res.Platform, "class", res.Class.String())

	if err := v.Sort(); err != nil {
		// without an order no check can run
		res.Errors = append(res.Errors, &CheckError{Platform: res.Platform, Step: "sort", Err: err})
		logger.Warnw("cannot sort reports", "error", err)
		return res, nil
	}

	for _, s := range sequences[res.Class] {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		outcomes, err := s.run(v, cfg)
		if err != nil {
			res.Errors = append(res.Errors, &CheckError{Platform: res.Platform, Step: s.name, Err: err})
			logger.Warnw("check failed", "check", s.name, "error", err)
			continue
		}
		for _, o := range outcomes {
			logger.Debugw("check complete", "check", o.Check.String(), "evaluated", o.Evaluated,
				"failed", o.Failed, "reports", o.Reports, "note", o.Note)
		}
		res.Outcomes = append(res.Outcomes, outcomes...)
	}
	return res, nil
}
