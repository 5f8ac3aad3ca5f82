package calculation

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is the error kind for structurally impossible input.
// Match it with errors.Is.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterError describes which input was rejected and why.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is makes every ParameterError match ErrInvalidParameter.
func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

func invalidParameter(field string, value any, reason string) error {
	return &ParameterError{Field: field, Value: value, Reason: reason}
}
