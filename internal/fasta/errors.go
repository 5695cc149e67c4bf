package fasta

// errors.go defines the failure kinds a conversion can produce.
//
// A ConfigError is fatal and always raised before the first entry, so a bad
// configuration can never leave partial output behind. RowError and
// UnknownColumnError surface broken lookups and abort the pass where they
// happen. Skipped cells (blank or sentinel sequence values) are not errors.

import "fmt"

// ConfigError reports options or column selections that cannot drive a
// conversion.
type ConfigError struct {
	Option string // offending option or selection
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Option, e.Reason)
}

// RowError reports a row whose header cannot be composed because a selected
// header column holds no value for it. Sequence cells have a defined skip
// rule; header cells do not.
type RowError struct {
	Row    int // zero-based row index
	Column string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: no value for header column %q", e.Row, e.Column)
}

// UnknownColumnError reports a selected column that does not exist in the
// dataset at all.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q not found in the dataset", e.Column)
}
