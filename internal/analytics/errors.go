package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches *NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrMalformedInput matches *MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")
)

// NotFoundError reports a customer without any order history. It is
// informational: callers show it as a "no history" message.
type NotFoundError struct {
	CustomerID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no order history for customer %s", e.CustomerID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedInputError reports a filter parameter whose value could not be
// parsed. The clause it belongs to is ignored.
type MalformedInputError struct {
	Param string
	Value string
	Err   error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("ignoring %s=%q: %v", e.Param, e.Value, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMalformedInput) match.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
