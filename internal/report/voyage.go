package report

import (
	"sort"
	"time"
)

// Voyage is the time-ordered sequence of reports from one platform.
//
// Reports are held by pointer: a filtered voyage built with Subset shares its
// reports with the voyage it came from, so flags written through either one
// land on the same report.
type Voyage struct {
	Reports []*Report
}

// NewVoyage builds a voyage from reports in the order given.
func NewVoyage(reports ...*Report) *Voyage {
	return &Voyage{Reports: reports}
}

// Len returns the number of reports.
func (v *Voyage) Len() int { return len(v.Reports) }

// Add appends a report. Call Sort before checking if reports arrive out of order.
func (v *Voyage) Add(r *Report) { v.Reports = append(v.Reports, r) }

// PlatformID returns the ID of the first report, or "" for an empty voyage.
func (v *Voyage) PlatformID() string {
	if len(v.Reports) == 0 {
		return ""
	}
	return v.Reports[0].ID
}

// PlatformType returns the platform type of the first report, or -1 for an
// empty voyage.
func (v *Voyage) PlatformType() int {
	if len(v.Reports) == 0 {
		return -1
	}
	return v.Reports[0].PlatformType
}

// Sort orders reports by timestamp, breaking ties on UID.
func (v *Voyage) Sort() error {
	times := make(map[*Report]time.Time, len(v.Reports))
	for i, r := range v.Reports {
		t, err := r.Time()
		if err != nil {
			return DataErrorf(v, i, "cannot sort: %v", err)
		}
		times[r] = t
	}

	sort.SliceStable(v.Reports, func(a, b int) bool {
		ta, tb := times[v.Reports[a]], times[v.Reports[b]]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return v.Reports[a].UID < v.Reports[b].UID
	})
	return nil
}

// Subset returns a voyage holding the reports for which keep returns true,
// along with each kept report's index in v.
func (v *Voyage) Subset(keep func(i int, r *Report) bool) (*Voyage, []int) {
	sub := &Voyage{}
	var index []int
	for i, r := range v.Reports {
		if keep(i, r) {
			sub.Reports = append(sub.Reports, r)
			index = append(index, i)
		}
	}
	return sub, index
}

// SetAll writes flag f for check c on every report.
func (v *Voyage) SetAll(c Check, f Flag) {
	for _, r := range v.Reports {
		r.Flags.Set(c, f)
	}
}

// Apply writes flags[i] for check c onto report i. It is the last step of
// every check, so a check that fails part way leaves no partial flags.
func (v *Voyage) Apply(c Check, flags []Flag) {
	for i, f := range flags {
		v.Reports[i].Flags.Set(c, f)
	}
}

// Count returns the number of reports whose flag for c equals f.
func (v *Voyage) Count(c Check, f Flag) int {
	n := 0
	for _, r := range v.Reports {
		if r.Flags.Get(c) == f {
			n++
		}
	}
	return n
}
