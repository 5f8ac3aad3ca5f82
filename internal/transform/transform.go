package transform

import (
	"fmt"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// ParameterTransform defines the interface for all parameter transformations.
// Transforms are composable what-if operations on simulation parameters,
// used by comparisons, break-even search and the CLI.
type ParameterTransform interface {
	// Apply returns a modified copy of base. base is never mutated.
	Apply(base domain.SimulationParameters) (domain.SimulationParameters, error)

	// Name returns a short identifier for this transform (e.g., "delay_sale").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks if the transform parameters are valid without applying it.
	Validate(base domain.SimulationParameters) error
}

// ApplyTransforms applies a sequence of transforms to base parameters.
// Transforms are applied in order, with each transform receiving the output of the previous one.
func ApplyTransforms(base domain.SimulationParameters, transforms []ParameterTransform) (domain.SimulationParameters, error) {
	current := base

	for i, transform := range transforms {
		if transform == nil {
			return base, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return base, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return base, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}

		current = next
	}

	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
