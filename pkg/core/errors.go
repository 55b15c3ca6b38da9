package core

import "fmt"

// ValidationError represents an error found while validating input values.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// InsufficientScansError is returned when an acquisition profile needs more scans
// than the raw series provides.
type InsufficientScansError struct {
	Expected  int
	Available int
}

func (e *InsufficientScansError) Error() string {
	return fmt.Sprintf("acquisition profile requires %d scans but only %d are available", e.Expected, e.Available)
}

// ShapeMismatchError is returned when matrices that must share dimensions do not.
type ShapeMismatchError struct {
	ShapeA [2]int
	ShapeB [2]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: %dx%d vs %dx%d", e.ShapeA[0], e.ShapeA[1], e.ShapeB[0], e.ShapeB[1])
}

// InsufficientInputError is returned when an operation receives too few matrices.
type InsufficientInputError struct {
	Required int
	Supplied int
}

func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("at least %d matrices are required, got %d", e.Required, e.Supplied)
}
