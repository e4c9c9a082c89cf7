package config

import "fmt"

// InvalidPatternError reports a custom pattern that failed to compile.
// Registration is fatal-on-error: a bad pattern is never silently
// dropped from the tables.
type InvalidPatternError struct {
	Kind    string // category or PII kind the pattern was registered under
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern for %q: %q: %v", e.Kind, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }
