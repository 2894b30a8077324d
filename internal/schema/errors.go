package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema matches every *SchemaError through errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Kind    Kind
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	name := e.Table
	if name == "" {
		name = string(e.Kind)
	}
	return fmt.Sprintf("%s table %q is missing required column(s): %s",
		e.Kind, name, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
