package report

import "fmt"

// Outcome summarises one check run over one voyage.
type Outcome struct {
	Check     Check
	Reports   int
	Failed    int
	Evaluated bool   // false when the voyage was exempt or too short to judge
	Note      string // why the voyage was not evaluated, if it was not
}

// Skipped builds an outcome for a voyage the check could not evaluate.
func Skipped(c Check, n int, format string, args ...any) Outcome {
	return Outcome{Check: c, Reports: n, Note: fmt.Sprintf(format, args...)}
}

// Evaluated builds an outcome for a completed evaluation.
func Evaluated(c Check, flags []Flag) Outcome {
	o := Outcome{Check: c, Reports: len(flags), Evaluated: true}
	for _, f := range flags {
		if f == Fail {
			o.Failed++
		}
	}
	return o
}

func (o Outcome) String() string {
	if !o.Evaluated {
		return fmt.Sprintf("%s: not evaluated (%s)", o.Check, o.Note)
	}
	return fmt.Sprintf("%s: %d of %d failed", o.Check, o.Failed, o.Reports)
}
