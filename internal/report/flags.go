package report

import "fmt"

// Flag is the outcome of one QC check on one report.
type Flag uint8

const (
	// Untested is the zero value: the check has not evaluated the report.
	Untested Flag = iota
	Pass
	Fail
)

// FailIf returns Fail when bad is true and Pass otherwise.
func FailIf(bad bool) Flag {
	if bad {
		return Fail
	}
	return Pass
}

// Code returns the conventional integer flag value: 0 pass, 1 fail, 9 untested.
func (f Flag) Code() int {
	switch f {
	case Pass:
		return 0
	case Fail:
		return 1
	default:
		return 9
	}
}

// FlagFromCode is the inverse of Code. Unknown codes read as Untested.
func FlagFromCode(code int) Flag {
	switch code {
	case 0:
		return Pass
	case 1:
		return Fail
	default:
		return Untested
	}
}

func (f Flag) String() string {
	switch f {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "untested"
	}
}

// Domain groups checks by the quantity they judge.
type Domain string

const (
	DomainPosition Domain = "POS"
	DomainSST      Domain = "SST"
)

// Check identifies a single QC test.
type Check int

const (
	BadTrack Check = iota
	FewObservations
	IQuamTrack
	Aground
	PickedUp
	PickedUpNew
	Spike
	TailStart
	TailEnd
	Biased
	Noisy
	ShortRecord

	numChecks
)

var checkInfo = [numChecks]struct {
	domain Domain
	name   string
}{
	BadTrack:        {DomainPosition, "trk"},
	FewObservations: {DomainPosition, "few"},
	IQuamTrack:      {DomainPosition, "iquam"},
	Aground:         {DomainPosition, "drf_agr"},
	PickedUp:        {DomainPosition, "drf_spd"},
	PickedUpNew:     {DomainPosition, "drf_spd_new"},
	Spike:           {DomainSST, "spike"},
	TailStart:       {DomainSST, "drf_tail1"},
	TailEnd:         {DomainSST, "drf_tail2"},
	Biased:          {DomainSST, "drf_bias"},
	Noisy:           {DomainSST, "drf_noise"},
	ShortRecord:     {DomainSST, "drf_short"},
}

// Checks returns every known check in declaration order.
func Checks() []Check {
	out := make([]Check, numChecks)
	for i := range out {
		out[i] = Check(i)
	}
	return out
}

// LookupCheck finds a check by domain and short name.
func LookupCheck(domain Domain, name string) (Check, bool) {
	for c := range checkInfo {
		if checkInfo[c].domain == domain && checkInfo[c].name == name {
			return Check(c), true
		}
	}
	return 0, false
}

func (c Check) valid() bool { return c >= 0 && c < numChecks }

// Domain returns the flag domain the check writes into.
func (c Check) Domain() Domain {
	if !c.valid() {
		return ""
	}
	return checkInfo[c].domain
}

// Name returns the check's short flag name within its domain.
func (c Check) Name() string {
	if !c.valid() {
		return fmt.Sprintf("check(%d)", int(c))
	}
	return checkInfo[c].name
}

func (c Check) String() string {
	if !c.valid() {
		return c.Name()
	}
	return string(c.Domain()) + "/" + c.Name()
}

// Flags holds one flag per check. The zero value is all Untested.
type Flags [numChecks]Flag

// Get returns the flag for c.
func (f *Flags) Get(c Check) Flag {
	if !c.valid() {
		return Untested
	}
	return f[c]
}

// Set records the flag for c.
func (f *Flags) Set(c Check, v Flag) {
	if c.valid() {
		f[c] = v
	}
}

// Failed reports whether c has been evaluated and failed.
func (f *Flags) Failed(c Check) bool {
	return f.Get(c) == Fail
}
