package signals

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInsufficientData is returned when a window is shorter than a calculation needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMalformedBar is wrapped by every MalformedBarError.
	ErrMalformedBar = errors.New("malformed bar")
	// ErrEmptyUniverse is returned by the selector when there is nothing to select from.
	ErrEmptyUniverse = errors.New("empty universe")
	// ErrInvalidInstrument is returned for an instrument config the scorer cannot use.
	ErrInvalidInstrument = errors.New("invalid instrument config")
)

// MalformedBarError describes a bar that breaks high >= max(open,close) >= min(open,close) >= low
// or carries a non-positive or non-finite price.
type MalformedBarError struct {
	Index   int
	Session time.Time
	Reason  string
}

func (e *MalformedBarError) Error() string {
	if e.Session.IsZero() {
		return fmt.Sprintf("malformed bar %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed bar %d (%s): %s", e.Index, e.Session.Format("2006-01-02"), e.Reason)
}

func (e *MalformedBarError) Unwrap() error { return ErrMalformedBar }

func insufficient(need, got int) error {
	return fmt.Errorf("%w: need %d bars, got %d", ErrInsufficientData, need, got)
}
