// Package trackcheck implements the iterative ship track check. A report is
// failed only when three independent signals agree: it sits far from the
// time-interpolated midpoint of its neighbours, the speeds into and out of it
// are excessive, and it is inconsistent with the ship's reported speed,
// heading, or an absolute speed ceiling.
package trackcheck

import (
	"fmt"

	"github.com/chrissnell/marineqc/internal/report"
)

// PassResult holds the per-report outcome of a single track check pass.
type PassResult struct {
	Failed []bool
	Limits Limits
}

// Pass runs one track check pass over a sorted voyage of at least three reports.
func Pass(v *report.Voyage, p Params) (PassResult, error) {
	k, err := report.Derive(v)
	if err != nil {
		return PassResult{}, err
	}
	n := k.Len()

	speeds := make([]float64, 0, n)
	for _, s := range k.Step {
		if s.Valid {
			speeds = append(speeds, s.Speed)
		}
	}
	limits := SpeedLimits(ModalSpeed(speeds))

	forward := forwardDiscrepancy(v, k)
	backward := backwardDiscrepancy(v, k)
	midpoint := midpointDiscrepancy(k)

	maxMidpoint := p.MaxMidpointDiscrepancy / KmToNm
	maxAbsolute := p.MaxAbsoluteSpeed / KmToNm
	res := PassResult{Failed: make([]bool, n), Limits: limits}

	// The first and last reports always pass.
	for i := 1; i < n-1; i++ {
		qcA := excessSpeed(k, i, limits.MaxSpeed)

		qcB := 0
		qcB += distanceFromEstimate(v, k, i, forward[i].Float64, backward[i].Float64,
			forward[i].Valid && backward[i].Valid)
		qcB += directionContinuity(v, k, i, p.MaxDirectionChange)
		qcB += speedContinuity(v, k, i, p.MaxSpeedChange/KmToNm)
		if k.Step[i].Speed > maxAbsolute {
			qcB += 10
		}

		if midpoint[i].Valid && midpoint[i].Float64 > maxMidpoint && qcA > 0 && qcB > 0 {
			res.Failed[i] = true
		}
	}
	return res, nil
}

// excessSpeed scores pairs of speeds through report i that both exceed the
// limit. Alternate-neighbour speeds that are not defined never count.
func excessSpeed(k *report.Kinematics, i int, limit float64) int {
	over := func(s report.Step) bool { return s.Valid && s.Speed > limit }

	switch {
	case over(k.Step[i]) && over(k.Alt[i-1]):
		return 1
	case i+1 < k.Len() && over(k.Step[i+1]) && over(k.Alt[i+1]):
		return 2
	case i+1 < k.Len() && over(k.Step[i]) && over(k.Step[i+1]):
		return 3
	}
	return 0
}

// distanceFromEstimate scores a report whose forward and backward dead-reckoned
// positions are both further away than the ship could have sailed at its
// reported speeds.
func distanceFromEstimate(v *report.Voyage, k *report.Kinematics, i int, fwd, rev float64, ok bool) int {
	s0, _, ok0 := reported(v, i-1)
	s1, _, ok1 := reported(v, i)
	if !ok || !ok0 || !ok1 || s0 <= 0 || s1 <= 0 {
		return 0
	}
	allowed := k.Step[i].TimeDiff * (s0 + s1) / 2
	if fwd > allowed && rev > allowed {
		return 10
	}
	return 0
}

// directionContinuity scores a report whose reported heading, at this or the
// previous report, differs from the course actually made good.
func directionContinuity(v *report.Voyage, k *report.Kinematics, i int, maxChange float64) int {
	_, h0, ok0 := reported(v, i-1)
	_, h1, ok1 := reported(v, i)
	if !ok0 || !ok1 {
		return 0
	}
	course := k.Step[i].Course
	if headingDifference(h1, course) > maxChange || headingDifference(h0, course) > maxChange {
		return 10
	}
	return 0
}

// speedContinuity scores a report whose reported speed, at this or the
// previous report, differs from the speed made good by more than maxChange (km/h).
func speedContinuity(v *report.Voyage, k *report.Kinematics, i int, maxChange float64) int {
	s0, _, ok0 := reported(v, i-1)
	s1, _, ok1 := reported(v, i)
	if !ok0 || !ok1 {
		return 0
	}
	speed := k.Step[i].Speed
	if abs(s1-speed) > maxChange || abs(s0-speed) > maxChange {
		return 10
	}
	return 0
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Result is the outcome of a full track check.
type Result struct {
	Outcome         report.Outcome // bad track
	FewObservations report.Outcome
	// Passes is the number of track check passes run, at most MaxIterations+1.
	Passes int
}

// Outcomes lists the bad track and few observations outcomes.
func (r Result) Outcomes() []report.Outcome {
	return []report.Outcome{r.Outcome, r.FewObservations}
}

func skipped(n int, format string, args ...any) Result {
	return Result{
		Outcome:         report.Skipped(report.BadTrack, n, format, args...),
		FewObservations: report.Skipped(report.FewObservations, n, format, args...),
	}
}

func uniform(c report.Check, n int, f report.Flag) report.Outcome {
	flags := make([]report.Flag, n)
	for i := range flags {
		flags[i] = f
	}
	return report.Evaluated(c, flags)
}

// Check runs the full iterative track check on a sorted ship voyage and sets
// the BadTrack and FewObservations flags.
//
// After each pass the failed reports are dropped and the survivors are
// checked again, because removing a bad report changes the alternate-neighbour
// speeds of the reports around it. This repeats until a pass fails nothing new
// or MaxIterations re-checks have run.
func Check(v *report.Voyage, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("track check: %w", err)
	}

	n := v.Len()
	switch {
	case n == 0:
		return skipped(0, "no reports"), nil

	case report.IsGenericID(v.PlatformID()):
		v.SetAll(report.BadTrack, report.Pass)
		v.SetAll(report.FewObservations, report.Pass)
		return skipped(n, "generic platform id %q", v.PlatformID()), nil

	case v.Reports[0].IsBuoy():
		v.SetAll(report.BadTrack, report.Pass)
		v.SetAll(report.FewObservations, report.Pass)
		return skipped(n, "buoy platform type %d", v.PlatformType()), nil

	case n < 3:
		few := report.Fail
		first := v.Reports[0]
		if first.Deck == p.ExemptDeck && first.Year < p.ExemptBeforeYear {
			few = report.Pass
		}
		v.SetAll(report.BadTrack, report.Pass)
		v.SetAll(report.FewObservations, few)
		return Result{
			Outcome:         report.Skipped(report.BadTrack, n, "too few observations (%d)", n),
			FewObservations: uniform(report.FewObservations, n, few),
		}, nil
	}

	failed := make([]bool, n)
	res, err := Pass(v, p)
	if err != nil {
		return Result{}, fmt.Errorf("track check: %w", err)
	}
	passes := 1
	newFailures := merge(failed, res.Failed, nil)

	for iter := 0; iter < p.MaxIterations && newFailures; iter++ {
		sub, index := v.Subset(func(i int, _ *report.Report) bool { return !failed[i] })
		if sub.Len() < 3 {
			break
		}
		res, err = Pass(sub, p)
		if err != nil {
			return Result{}, fmt.Errorf("track check pass %d: %w", passes+1, err)
		}
		passes++
		newFailures = merge(failed, res.Failed, index)
	}

	flags := make([]report.Flag, n)
	for i, f := range failed {
		flags[i] = report.FailIf(f)
	}
	v.Apply(report.BadTrack, flags)
	v.SetAll(report.FewObservations, report.Pass)

	return Result{
		Outcome:         report.Evaluated(report.BadTrack, flags),
		FewObservations: uniform(report.FewObservations, n, report.Pass),
		Passes:          passes,
	}, nil
}

// merge folds the failures of a pass over a filtered voyage back onto the
// original indices and reports whether anything new failed.
func merge(failed, pass []bool, index []int) bool {
	changed := false
	for j, f := range pass {
		if !f {
			continue
		}
		i := j
		if index != nil {
			i = index[j]
		}
		if !failed[i] {
			failed[i] = true
			changed = true
		}
	}
	return changed
}
