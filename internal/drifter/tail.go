package drifter

import (
	"fmt"
	"math"

	"github.com/chrissnell/marineqc/internal/report"
)

// TailResult carries the outcomes of the two tail flags.
type TailResult struct {
	Start report.Outcome
	End   report.Outcome
}

// Outcomes lists both outcomes in flag order.
func (r TailResult) Outcomes() []report.Outcome {
	return []report.Outcome{r.Start, r.End}
}

// SSTTailCheck looks for runs of bad SST at the start and end of a drifter
// record by comparing night-time observations with the background field.
// A long-window pass finds gross biases and a short-window pass trims
// individual outliers next to the good part of the record. If the start and
// end tails meet, the record is left unflagged.
func SSTTailCheck(v *report.Voyage, p TailParams, f FilterParams) (TailResult, error) {
	if err := p.Validate(); err != nil {
		return TailResult{}, fmt.Errorf("tail check: %w", err)
	}
	if err := f.Validate(); err != nil {
		return TailResult{}, fmt.Errorf("tail check: %w", err)
	}

	n := v.Len()
	if n == 0 {
		return TailResult{
			Start: report.Skipped(report.TailStart, 0, "no reports"),
			End:   report.Skipped(report.TailEnd, 0, "no reports"),
		}, nil
	}

	m, err := matchBackground(v, f)
	if err != nil {
		return TailResult{}, fmt.Errorf("tail check: %w", err)
	}
	if m.Len() == 0 {
		v.SetAll(report.TailStart, report.Pass)
		v.SetAll(report.TailEnd, report.Pass)
		return TailResult{
			Start: report.Skipped(report.TailStart, n, "no reports with a usable background match"),
			End:   report.Skipped(report.TailEnd, n, "no reports with a usable background match"),
		}, nil
	}

	start, end := tailBounds(m.anomaly, m.variance, p)

	startFlags := make([]report.Flag, n)
	endFlags := make([]report.Flag, n)
	for i := range startFlags {
		startFlags[i] = report.Pass
		endFlags[i] = report.Pass
	}

	crossed := start >= end
	if !crossed {
		for j, i := range m.index {
			startFlags[i] = report.FailIf(j <= start)
			endFlags[i] = report.FailIf(j >= end)
		}
	}

	v.Apply(report.TailStart, startFlags)
	v.Apply(report.TailEnd, endFlags)
	res := TailResult{
		Start: report.Evaluated(report.TailStart, startFlags),
		End:   report.Evaluated(report.TailEnd, endFlags),
	}
	if crossed {
		res.Start.Note = "tails overlap, record left unflagged"
		res.End.Note = res.Start.Note
	}
	return res, nil
}

// tailBounds returns the index of the last bad report of the start tail and
// the first bad report of the end tail, in the matched arrays. No start tail
// is -1 and no end tail is len(anom).
func tailBounds(anom, variance []float64, p TailParams) (int, int) {
	nr := len(anom)
	start, end := -1, nr

	if nr >= p.LongWindow {
		if t := longTail(anom, variance, p); t >= 0 {
			start = t
		}
		if t := longTail(reversed(anom), reversed(variance), p); t >= 0 {
			end = nr - 1 - t
		}
	}

	first, last := start+1, end-1
	npass := last - first + 1
	if npass <= 0 || npass < p.ShortWindow {
		return start, end
	}

	span := anom[first : last+1]
	spanVar := variance[first : last+1]
	start += shortTail(span, spanVar, p)
	end -= shortTail(reversed(span), reversed(spanVar), p)
	return start, end
}

// longTail slides the long window from the front of the arrays and returns
// the centre of the last failing window, or -1 if the first window passes.
func longTail(anom, variance []float64, p TailParams) int {
	mid := p.LongWindow / 2
	tail := -1
	for ix := 0; ix+p.LongWindow <= len(anom); ix++ {
		winVar := variance[ix : ix+p.LongWindow]
		if anyAbove(winVar, p.BackgroundVarLimit) {
			break
		}

		avg, std := trimmedMeanStd(anom[ix:ix+p.LongWindow], p.TrimDivisor)
		bgVar := mean(winVar)
		biased := math.Abs(avg) > p.LongStdN*math.Sqrt(p.DrifterInterStdev*p.DrifterInterStdev+bgVar)
		noisy := std > math.Sqrt(p.DrifterIntraStdev*p.DrifterIntraStdev+bgVar)
		if !biased && !noisy {
			break
		}
		tail = ix + mid
	}
	return tail
}

// shortTail slides the short window from the front of the arrays and
// returns how many reports the tail grows by: one per failing window, or the
// whole span if every window fails.
func shortTail(anom, variance []float64, p TailParams) int {
	npass := len(anom)
	inter2 := p.DrifterInterStdev * p.DrifterInterStdev
	intra2 := p.DrifterIntraStdev * p.DrifterIntraStdev

	grow := 0
	for ix := 0; ix+p.ShortWindow <= npass; ix++ {
		winVar := variance[ix : ix+p.ShortWindow]
		if anyAbove(winVar, p.BackgroundVarLimit) {
			break
		}

		bad := 0
		for j, a := range anom[ix : ix+p.ShortWindow] {
			if math.Abs(a) > p.ShortStdN*math.Sqrt(winVar[j]+inter2+intra2) {
				bad++
			}
		}
		if bad < p.ShortBadN {
			break
		}

		if ix == npass-p.ShortWindow {
			grow += p.ShortWindow
		} else {
			grow++
		}
	}
	return grow
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
