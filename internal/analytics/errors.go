package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow matches any *MalformedRowError via errors.Is
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidWindow matches any *InvalidWindowError via errors.Is
	ErrInvalidWindow = errors.New("invalid window")
)

// MalformedRowError reports a row whose timestamp or value is missing or
// cannot be parsed. Row is the 0-based position in the raw input.
type MalformedRowError struct {
	Row   int
	Field string
	Raw   interface{}
	Err   error
}

func (e *MalformedRowError) Error() string {
	if e.Raw == nil {
		return fmt.Sprintf("row %d: field %q: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: field %q: cannot parse %v: %v", e.Row, e.Field, e.Raw, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedRow) succeed
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// InvalidWindowError reports a non-positive moving average window.
type InvalidWindowError struct {
	Window int
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window %d: must be positive", e.Window)
}

// Is makes errors.Is(err, ErrInvalidWindow) succeed
func (e *InvalidWindowError) Is(target error) bool {
	return target == ErrInvalidWindow
}
