package report

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks invalid check parameters.
	ErrConfig = errors.New("invalid check configuration")
	// ErrData marks reports that cannot be checked as given.
	ErrData = errors.New("invalid report data")
)

// ConfigError describes a check parameter that violates its constraints.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrConfig, e.Param, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

// ConfigErrorf builds a ConfigError for param.
func ConfigErrorf(param, format string, args ...any) error {
	return &ConfigError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// DataError identifies the report that made a check impossible.
type DataError struct {
	Index  int
	UID    string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%v: report %d (uid %q): %s", ErrData, e.Index, e.UID, e.Reason)
}

func (e *DataError) Unwrap() error { return ErrData }

// DataErrorf builds a DataError for the report at index i of v.
func DataErrorf(v *Voyage, i int, format string, args ...any) error {
	uid := ""
	if v != nil && i >= 0 && i < v.Len() {
		uid = v.Reports[i].UID
	}
	return &DataError{Index: i, UID: uid, Reason: fmt.Sprintf(format, args...)}
}
