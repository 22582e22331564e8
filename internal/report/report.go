// Package report holds the observation data model shared by every QC check:
// individual reports, their QC flags, and per-platform voyages.
package report

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chrissnell/marineqc/pkg/geo"
)

// ICOADS platform type codes that change how a platform is checked.
const (
	MooredBuoy   = 6
	DriftingBuoy = 7
)

// genericIDs are callsigns shared by many unrelated platforms. Tracks built
// from them are meaningless, so track-style checks pass them unchecked.
var genericIDs = map[string]bool{
	"":       true,
	"SHIP":   true,
	"PLAT":   true,
	"RIGG":   true,
	"MASKST": true,
	"0120":   true,
	"0102":   true,
	"0100":   true,
	"0121":   true,
	"0101":   true,
	"0116":   true,
	"0105":   true,
	"0122":   true,
}

// IsGenericID reports whether id is a placeholder identifier.
func IsGenericID(id string) bool {
	return genericIDs[strings.ToUpper(strings.TrimSpace(id))]
}

// Float wraps v as a present optional value.
func Float(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Variables are the measured quantities carried by a report. Each one is
// either present or explicitly absent.
type Variables struct {
	SST sql.NullFloat64 // sea surface temperature, degC
	AT  sql.NullFloat64 // air temperature, degC
	DPT sql.NullFloat64 // dew point temperature, degC
	SLP sql.NullFloat64 // sea level pressure, hPa

	// Ship speed (knots) and heading (degrees) as reported by the observer.
	ShipSpeed   sql.NullFloat64
	ShipHeading sql.NullFloat64
}

// Background is the reference-field match attached to a report by an
// external process before the SST checks run.
type Background struct {
	Value         sql.NullFloat64 // background SST, degC
	ErrorVariance sql.NullFloat64 // K^2
	IceFraction   sql.NullFloat64 // 0..1
}

// Report is a single marine observation.
type Report struct {
	ID           string // platform identifier shared across the platform's lifetime
	UID          string // unique observation identifier
	Deck         int
	PlatformType int

	Year  int
	Month int
	Day   int
	Hour  sql.NullFloat64 // fractional hour, UTC

	Lat sql.NullFloat64
	Lon sql.NullFloat64

	Vars       Variables
	Background Background
	Flags      Flags
}

// IsBuoy reports whether the platform is a moored or drifting buoy.
func (r *Report) IsBuoy() bool {
	return r.PlatformType == MooredBuoy || r.PlatformType == DriftingBuoy
}

// Time returns the report's timestamp in UTC.
func (r *Report) Time() (time.Time, error) {
	if !r.Hour.Valid {
		return time.Time{}, fmt.Errorf("missing hour")
	}
	if r.Month < 1 || r.Month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", r.Month)
	}
	if r.Day < 1 || r.Day > daysIn(r.Year, time.Month(r.Month)) {
		return time.Time{}, fmt.Errorf("day %d out of range for %04d-%02d", r.Day, r.Year, r.Month)
	}
	if r.Hour.Float64 < 0 || r.Hour.Float64 >= 24 {
		return time.Time{}, fmt.Errorf("hour %v out of range", r.Hour.Float64)
	}

	midnight := time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
	return midnight.Add(time.Duration(r.Hour.Float64 * float64(time.Hour))), nil
}

// Position returns latitude and longitude, the latter normalized to (-180, 180].
func (r *Report) Position() (float64, float64, error) {
	if !r.Lat.Valid || !r.Lon.Valid {
		return 0, 0, fmt.Errorf("missing position")
	}
	if !geo.ValidLatitude(r.Lat.Float64) {
		return 0, 0, fmt.Errorf("latitude %v out of range", r.Lat.Float64)
	}
	return r.Lat.Float64, geo.NormalizeLongitude(r.Lon.Float64), nil
}

func (r *Report) String() string {
	return fmt.Sprintf("%s/%s %04d-%02d-%02d", r.ID, r.UID, r.Year, r.Month, r.Day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
