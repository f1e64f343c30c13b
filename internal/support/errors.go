package support

import (
	"errors"
	"fmt"
)

// Kind classifies a failed exchange for the HTTP layer.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindStore           Kind = "store_io"
	KindProvider        Kind = "provider"
	KindProviderTimeout Kind = "provider_timeout"
)

// ErrMissingFields is returned when the session or message is blank.
var ErrMissingFields = errors.New("session id and message are required")

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
