package resolver

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch          = errors.New("no matching app")
	ErrNoDepots         = errors.New("no depots")
	ErrInvalidSelection = errors.New("invalid selection")
)

type Reason string

const (
	ReasonNoMatchingApp    Reason = "no matching app"
	ReasonNoDepots         Reason = "no depots"
	ReasonInvalidSelection Reason = "invalid selection"
)

// AbortError ends a resolution early. Err is one of the sentinel errors above
// so callers can use errors.Is.
type AbortError struct {
	Reason  Reason
	Detail  string
	Err     error
	AtState State
}

func (e *AbortError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("resolution aborted: %s (%s)", e.Reason, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("resolution aborted: %v", e.Err)
	}
	return fmt.Sprintf("resolution aborted: %s", e.Reason)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

func abort(state State, reason Reason, sentinel error, detail string) *AbortError {
	return &AbortError{
		Reason:  reason,
		Detail:  detail,
		Err:     sentinel,
		AtState: state,
	}
}
