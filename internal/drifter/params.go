package drifter

import (
	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/pkg/solar"
)

// AgroundParams configures the aground check. Periods are in days.
type AgroundParams struct {
	SmoothWindow    int     `yaml:"smooth_window"`
	MinWindowPeriod float64 `yaml:"min_window_period"`
	MaxWindowPeriod float64 `yaml:"max_window_period"`
	// AnchorToEnd compares every anchor with the last smoothed position
	// instead of the far end of a sliding window.
	AnchorToEnd bool `yaml:"anchor_to_end"`
}

// DefaultAgroundParams returns the reference aground parameters.
func DefaultAgroundParams() AgroundParams {
	return AgroundParams{
		SmoothWindow:    41,
		MinWindowPeriod: 8,
		MaxWindowPeriod: 10,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p AgroundParams) Validate() error {
	switch {
	case p.SmoothWindow < 1:
		return report.ConfigErrorf("aground.smooth_window", "must be at least 1, got %d", p.SmoothWindow)
	case p.SmoothWindow%2 == 0:
		return report.ConfigErrorf("aground.smooth_window", "must be odd, got %d", p.SmoothWindow)
	case p.MinWindowPeriod <= 0:
		return report.ConfigErrorf("aground.min_window_period", "must be positive, got %v", p.MinWindowPeriod)
	case !p.AnchorToEnd && p.MaxWindowPeriod < p.MinWindowPeriod:
		return report.ConfigErrorf("aground.max_window_period", "must not be less than min_window_period (%v), got %v",
			p.MinWindowPeriod, p.MaxWindowPeriod)
	}
	return nil
}

// SpeedParams configures the picked-up speed check. The limit is in m/s and
// periods are in days.
type SpeedParams struct {
	SpeedLimit      float64 `yaml:"speed_limit"`
	MinWindowPeriod float64 `yaml:"min_window_period"`
	MaxWindowPeriod float64 `yaml:"max_window_period"`
}

// DefaultSpeedParams returns the reference speed check parameters.
func DefaultSpeedParams() SpeedParams {
	return SpeedParams{
		SpeedLimit:      2.5,
		MinWindowPeriod: 0.8,
		MaxWindowPeriod: 1.0,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p SpeedParams) Validate() error {
	switch {
	case p.SpeedLimit <= 0:
		return report.ConfigErrorf("speed.speed_limit", "must be positive, got %v", p.SpeedLimit)
	case p.MinWindowPeriod <= 0:
		return report.ConfigErrorf("speed.min_window_period", "must be positive, got %v", p.MinWindowPeriod)
	case p.MaxWindowPeriod < p.MinWindowPeriod:
		return report.ConfigErrorf("speed.max_window_period", "must not be less than min_window_period (%v), got %v",
			p.MinWindowPeriod, p.MaxWindowPeriod)
	}
	return nil
}

// NewSpeedParams configures the refined speed check, which screens positions
// with the iQuam check before comparing windows.
type NewSpeedParams struct {
	SpeedLimit      float64 `yaml:"speed_limit"`
	MinWindowPeriod float64 `yaml:"min_window_period"`
}

// DefaultNewSpeedParams returns the reference refined speed check parameters.
func DefaultNewSpeedParams() NewSpeedParams {
	return NewSpeedParams{
		SpeedLimit:      3.0,
		MinWindowPeriod: 0.375,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p NewSpeedParams) Validate() error {
	switch {
	case p.SpeedLimit <= 0:
		return report.ConfigErrorf("new_speed.speed_limit", "must be positive, got %v", p.SpeedLimit)
	case p.MinWindowPeriod <= 0:
		return report.ConfigErrorf("new_speed.min_window_period", "must be positive, got %v", p.MinWindowPeriod)
	}
	return nil
}

// FilterParams decides which reports have a usable background match.
type FilterParams struct {
	DayElevationLimit  float64 `yaml:"day_elevation_limit"` // degrees
	IceLimit           float64 `yaml:"ice_limit"`
	MinBackgroundValue float64 `yaml:"min_background_value"` // degC
	MaxBackgroundValue float64 `yaml:"max_background_value"` // degC
}

// DefaultFilterParams returns the reference background filter.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		DayElevationLimit:  solar.DefaultDayElevationLimit,
		IceLimit:           0.15,
		MinBackgroundValue: -5,
		MaxBackgroundValue: 45,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p FilterParams) Validate() error {
	switch {
	case p.IceLimit < 0 || p.IceLimit > 1:
		return report.ConfigErrorf("background.ice_limit", "must be in [0, 1], got %v", p.IceLimit)
	case p.MaxBackgroundValue <= p.MinBackgroundValue:
		return report.ConfigErrorf("background.max_background_value", "must exceed min_background_value (%v), got %v",
			p.MinBackgroundValue, p.MaxBackgroundValue)
	}
	return nil
}

// TailParams configures the SST tail check. Standard deviations are in K and
// the background variance limit in K^2.
type TailParams struct {
	LongWindow         int     `yaml:"long_window"`
	LongStdN           float64 `yaml:"long_std_n"`
	ShortWindow        int     `yaml:"short_window"`
	ShortStdN          float64 `yaml:"short_std_n"`
	ShortBadN          int     `yaml:"short_bad_n"`
	DrifterInterStdev  float64 `yaml:"drifter_inter_stdev"`
	DrifterIntraStdev  float64 `yaml:"drifter_intra_stdev"`
	BackgroundVarLimit float64 `yaml:"background_var_limit"`
	// TrimDivisor sets the trimmed statistics: floor(n/TrimDivisor) values are
	// dropped from each end of a sorted window.
	TrimDivisor int `yaml:"trim_divisor"`
}

// DefaultTailParams returns the reference tail check parameters.
func DefaultTailParams() TailParams {
	return TailParams{
		LongWindow:         121,
		LongStdN:           3.0,
		ShortWindow:        30,
		ShortStdN:          3.0,
		ShortBadN:          2,
		DrifterInterStdev:  0.29,
		DrifterIntraStdev:  1.00,
		BackgroundVarLimit: 0.3,
		TrimDivisor:        100,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p TailParams) Validate() error {
	switch {
	case p.LongWindow < 1:
		return report.ConfigErrorf("tail.long_window", "must be at least 1, got %d", p.LongWindow)
	case p.LongWindow%2 == 0:
		return report.ConfigErrorf("tail.long_window", "must be odd, got %d", p.LongWindow)
	case p.ShortWindow < 1:
		return report.ConfigErrorf("tail.short_window", "must be at least 1, got %d", p.ShortWindow)
	case p.ShortWindow >= p.LongWindow:
		return report.ConfigErrorf("tail.short_window", "must be shorter than long_window (%d), got %d", p.LongWindow, p.ShortWindow)
	case p.ShortBadN < 1 || p.ShortBadN > p.ShortWindow:
		return report.ConfigErrorf("tail.short_bad_n", "must be in [1, short_window], got %d", p.ShortBadN)
	case p.LongStdN < 0:
		return report.ConfigErrorf("tail.long_std_n", "must not be negative, got %v", p.LongStdN)
	case p.ShortStdN < 0:
		return report.ConfigErrorf("tail.short_std_n", "must not be negative, got %v", p.ShortStdN)
	case p.DrifterInterStdev < 0:
		return report.ConfigErrorf("tail.drifter_inter_stdev", "must not be negative, got %v", p.DrifterInterStdev)
	case p.DrifterIntraStdev < 0:
		return report.ConfigErrorf("tail.drifter_intra_stdev", "must not be negative, got %v", p.DrifterIntraStdev)
	case p.BackgroundVarLimit <= 0:
		return report.ConfigErrorf("tail.background_var_limit", "must be positive, got %v", p.BackgroundVarLimit)
	case p.TrimDivisor < 3:
		return report.ConfigErrorf("tail.trim_divisor", "must be at least 3, got %d", p.TrimDivisor)
	}
	return nil
}

// BiasNoiseParams configures the SST biased/noisy check.
type BiasNoiseParams struct {
	// Records with at least NEval usable reports are judged as a whole.
	NEval              int     `yaml:"n_eval"`
	BiasLimit          float64 `yaml:"bias_limit"`
	DrifterInterStdev  float64 `yaml:"drifter_inter_stdev"`
	DrifterIntraStdev  float64 `yaml:"drifter_intra_stdev"`
	ErrStdN            float64 `yaml:"err_std_n"`
	NBad               int     `yaml:"n_bad"`
	BackgroundVarLimit float64 `yaml:"background_var_limit"`
}

// DefaultBiasNoiseParams returns the reference biased/noisy parameters.
func DefaultBiasNoiseParams() BiasNoiseParams {
	return BiasNoiseParams{
		NEval:              30,
		BiasLimit:          1.10,
		DrifterInterStdev:  0.29,
		DrifterIntraStdev:  1.00,
		ErrStdN:            3.0,
		NBad:               2,
		BackgroundVarLimit: 0.3,
	}
}

// Validate reports a configuration error for out-of-range parameters.
func (p BiasNoiseParams) Validate() error {
	switch {
	case p.NEval < 1:
		return report.ConfigErrorf("bias_noise.n_eval", "must be at least 1, got %d", p.NEval)
	case p.BiasLimit <= 0:
		return report.ConfigErrorf("bias_noise.bias_limit", "must be positive, got %v", p.BiasLimit)
	case p.DrifterInterStdev < 0:
		return report.ConfigErrorf("bias_noise.drifter_inter_stdev", "must not be negative, got %v", p.DrifterInterStdev)
	case p.DrifterIntraStdev < 0:
		return report.ConfigErrorf("bias_noise.drifter_intra_stdev", "must not be negative, got %v", p.DrifterIntraStdev)
	case p.ErrStdN < 0:
		return report.ConfigErrorf("bias_noise.err_std_n", "must not be negative, got %v", p.ErrStdN)
	case p.NBad < 1:
		return report.ConfigErrorf("bias_noise.n_bad", "must be at least 1, got %d", p.NBad)
	case p.BackgroundVarLimit <= 0:
		return report.ConfigErrorf("bias_noise.background_var_limit", "must be positive, got %v", p.BackgroundVarLimit)
	}
	return nil
}
