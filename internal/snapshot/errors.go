package snapshot

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthorized is reported when the backend rejects the session token.
var ErrUnauthorized = errors.New("unauthorized")

// FetchError reports that one of the constituent fetches failed: the source
// was unreachable, answered with a non-success status, or sent malformed data.
type FetchError struct {
	// Section is the fetch that failed: a section wire name, "period" or "crisis".
	Section string
	// Message is human readable and safe to show to a user.
	Message string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.Section, e.Message, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.Section, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError reports an invalid assembler request.
type ValidationError struct {
	Field string
	Value int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be a positive integer", e.Field, e.Value)
}

// AsFetchError attributes err to the named fetch. Errors that already are a
// FetchError keep their message and status but take the section name.
// Context cancellation and deadlines get a short readable message.
func AsFetchError(section string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.Section == section {
			return fe
		}
		return &FetchError{Section: section, Message: fe.Message, Status: fe.Status, Err: fe.Err}
	}
	msg := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	}
	return &FetchError{Section: section, Message: msg, Err: err}
}
