package drifter

import (
	"fmt"
	"math"

	"github.com/chrissnell/marineqc/internal/report"
)

// BiasNoiseResult carries the outcomes of the biased, noisy and short-record
// flags. Only one of the long-record and short-record tests is evaluated for
// any voyage.
type BiasNoiseResult struct {
	Biased report.Outcome
	Noisy  report.Outcome
	Short  report.Outcome
}

// Outcomes lists the three outcomes in flag order.
func (r BiasNoiseResult) Outcomes() []report.Outcome {
	return []report.Outcome{r.Biased, r.Noisy, r.Short}
}

// SSTBiasedNoisyCheck judges a whole drifter record against the background.
// Records with at least NEval usable reports fail as biased when the mean
// anomaly exceeds BiasLimit and as noisy when its spread exceeds what the
// drifter and background errors explain. Shorter records fail as a whole
// when NBad or more individual anomalies are too large. Flags apply to every
// report, including those without a usable background match.
func SSTBiasedNoisyCheck(v *report.Voyage, p BiasNoiseParams, f FilterParams) (BiasNoiseResult, error) {
	if err := p.Validate(); err != nil {
		return BiasNoiseResult{}, fmt.Errorf("biased/noisy check: %w", err)
	}
	if err := f.Validate(); err != nil {
		return BiasNoiseResult{}, fmt.Errorf("biased/noisy check: %w", err)
	}

	n := v.Len()
	if n == 0 {
		return skipAll(n, "no reports"), nil
	}

	m, err := matchBackground(v, f)
	if err != nil {
		return BiasNoiseResult{}, fmt.Errorf("biased/noisy check: %w", err)
	}

	v.SetAll(report.Biased, report.Pass)
	v.SetAll(report.Noisy, report.Pass)
	v.SetAll(report.ShortRecord, report.Pass)

	if m.Len() == 0 {
		return skipAll(n, "no reports with a usable background match"), nil
	}

	inter2 := p.DrifterInterStdev * p.DrifterInterStdev
	intra2 := p.DrifterIntraStdev * p.DrifterIntraStdev

	if m.Len() >= p.NEval {
		avg, std := meanStd(m.anomaly)
		bgVar := mean(m.variance)

		biased := math.Abs(avg) > p.BiasLimit
		noisy := std > math.Sqrt(intra2+bgVar)
		v.SetAll(report.Biased, report.FailIf(biased))
		v.SetAll(report.Noisy, report.FailIf(noisy))

		return BiasNoiseResult{
			Biased: evaluatedAll(report.Biased, n, biased),
			Noisy:  evaluatedAll(report.Noisy, n, noisy),
			Short:  report.Skipped(report.ShortRecord, n, "%d usable reports is a long record", m.Len()),
		}, nil
	}

	res := BiasNoiseResult{
		Biased: report.Skipped(report.Biased, n, "%d usable reports is fewer than %d", m.Len(), p.NEval),
		Noisy:  report.Skipped(report.Noisy, n, "%d usable reports is fewer than %d", m.Len(), p.NEval),
	}
	if anyAbove(m.variance, p.BackgroundVarLimit) {
		res.Short = report.Skipped(report.ShortRecord, n, "background error variance above %v", p.BackgroundVarLimit)
		return res, nil
	}

	bad := 0
	for j, a := range m.anomaly {
		if math.Abs(a) > p.ErrStdN*math.Sqrt(m.variance[j]+inter2+intra2) {
			bad++
		}
	}
	short := bad >= p.NBad
	v.SetAll(report.ShortRecord, report.FailIf(short))
	res.Short = evaluatedAll(report.ShortRecord, n, short)
	return res, nil
}

func evaluatedAll(c report.Check, n int, failed bool) report.Outcome {
	flags := make([]report.Flag, n)
	for i := range flags {
		flags[i] = report.FailIf(failed)
	}
	return report.Evaluated(c, flags)
}

func skipAll(n int, note string) BiasNoiseResult {
	return BiasNoiseResult{
		Biased: report.Skipped(report.Biased, n, "%s", note),
		Noisy:  report.Skipped(report.Noisy, n, "%s", note),
		Short:  report.Skipped(report.ShortRecord, n, "%s", note),
	}
}
