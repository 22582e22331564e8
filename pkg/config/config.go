// Package config holds the parameters for every QC check and for the batch
// runner, with defaults for all of them.
package config

import (
	"runtime"
	"time"

	"github.com/chrissnell/marineqc/internal/drifter"
	"github.com/chrissnell/marineqc/internal/peel"
	"github.com/chrissnell/marineqc/internal/report"
	"github.com/chrissnell/marineqc/internal/trackcheck"
)

// Config is the complete configuration. Sections map one-to-one onto the
// parameter structs of the checks.
type Config struct {
	TrackCheck trackcheck.Params       `yaml:"track_check"`
	IQuam      peel.IQuamParams        `yaml:"iquam"`
	Spike      peel.SpikeParams        `yaml:"spike"`
	Aground    drifter.AgroundParams   `yaml:"aground"`
	Speed      drifter.SpeedParams     `yaml:"speed"`
	NewSpeed   drifter.NewSpeedParams  `yaml:"new_speed"`
	Background drifter.FilterParams    `yaml:"background"`
	Tail       drifter.TailParams      `yaml:"tail"`
	BiasNoise  drifter.BiasNoiseParams `yaml:"bias_noise"`
	Run        RunConfig               `yaml:"run"`
}

// RunConfig controls the batch runner.
type RunConfig struct {
	Workers int `yaml:"workers"`
	// PlatformTimeout bounds the checks of one platform. Zero means no limit.
	PlatformTimeout time.Duration `yaml:"platform_timeout"`
	SummaryFormat   string        `yaml:"summary_format"` // json or msgpack
	Database        string        `yaml:"database"`
	// MaxLoggedErrors caps the check errors carried in the run summary.
	MaxLoggedErrors int `yaml:"max_logged_errors"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		TrackCheck: trackcheck.DefaultParams(),
		IQuam:      peel.DefaultIQuamParams(),
		Spike:      peel.DefaultSpikeParams(),
		Aground:    drifter.DefaultAgroundParams(),
		Speed:      drifter.DefaultSpeedParams(),
		NewSpeed:   drifter.DefaultNewSpeedParams(),
		Background: drifter.DefaultFilterParams(),
		Tail:       drifter.DefaultTailParams(),
		BiasNoise:  drifter.DefaultBiasNoiseParams(),
		Run: RunConfig{
			Workers:         runtime.NumCPU(),
			PlatformTimeout: 5 * time.Minute,
			SummaryFormat:   "json",
			Database:        "marineqc.db",
			MaxLoggedErrors: 1000,
		},
	}
}

// Validate checks every section and returns the first configuration error.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		c.TrackCheck,
		c.IQuam,
		c.Spike,
		c.Aground,
		c.Speed,
		c.NewSpeed,
		c.Background,
		c.Tail,
		c.BiasNoise,
		c.Run,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports a configuration error for out-of-range runner settings.
func (r RunConfig) Validate() error {
	switch {
	case r.Workers < 1:
		return report.ConfigErrorf("run.workers", "must be at least 1, got %d", r.Workers)
	case r.PlatformTimeout < 0:
		return report.ConfigErrorf("run.platform_timeout", "must not be negative, got %v", r.PlatformTimeout)
	case r.SummaryFormat != "json" && r.SummaryFormat != "msgpack":
		return report.ConfigErrorf("run.summary_format", "must be json or msgpack, got %q", r.SummaryFormat)
	case r.MaxLoggedErrors < 1:
		return report.ConfigErrorf("run.max_logged_errors", "must be at least 1, got %d", r.MaxLoggedErrors)
	}
	return nil
}
