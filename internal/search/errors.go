package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCriteria is wrapped by every ValidationError.
var ErrInvalidCriteria = errors.New("invalid search criteria")

// FieldError describes one rejected criteria field.
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// ValidationError is returned when criteria carry values outside the closed
// vocabulary. No data is read when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s %q", f.Field, f.Reason, f.Value)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidCriteria, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCriteria
}
