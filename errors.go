package winecluster

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("winecluster: invalid configuration")

	// ErrDegenerateInput matches every *DegenerateInputError via errors.Is.
	ErrDegenerateInput = errors.New("winecluster: degenerate input")

	// ErrNumericInstability matches every *NumericInstabilityError via errors.Is.
	ErrNumericInstability = errors.New("winecluster: numeric instability")
)

// ConfigurationError reports a request the core cannot serve as asked: an
// invalid cluster count, an empty or ragged table, or a non-finite value.
// K, Row and Column are -1 when they do not apply.
type ConfigurationError struct {
	K      int
	Row    int
	Column int
	Reason string
}

func (e *ConfigurationError) Error() string {
	msg := "winecluster: " + e.Reason
	if e.K >= 0 {
		msg += fmt.Sprintf(" (k=%d)", e.K)
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" (row=%d)", e.Row)
	}
	if e.Column >= 0 {
		msg += fmt.Sprintf(" (column=%d)", e.Column)
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DegenerateInputError reports input that is well-formed but cannot be
// processed: a zero-variance column, or too few distinct samples to keep k
// clusters populated.
type DegenerateInputError struct {
	K      int
	Column int
	Reason string
}

func (e *DegenerateInputError) Error() string {
	msg := "winecluster: " + e.Reason
	if e.K >= 0 {
		msg += fmt.Sprintf(" (k=%d)", e.K)
	}
	if e.Column >= 0 {
		msg += fmt.Sprintf(" (column=%d)", e.Column)
	}
	return msg
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// NumericInstabilityError reports a decomposition that failed or produced
// non-finite values.
type NumericInstabilityError struct {
	Reason string
}

func (e *NumericInstabilityError) Error() string { return "winecluster: " + e.Reason }

func (e *NumericInstabilityError) Is(target error) bool { return target == ErrNumericInstability }

func configErr(k, row, col int, format string, args ...any) error {
	return &ConfigurationError{K: k, Row: row, Column: col, Reason: fmt.Sprintf(format, args...)}
}
