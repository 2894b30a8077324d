package dataset

import "fmt"

// DecodeError reports a cell that could not be converted to the type its
// column requires. Row numbers are 1-based data rows (the header excluded).
type DecodeError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%s row %d: invalid %s %q", e.Table, e.Row, e.Column, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
