package dynamo

import "errors"

// Domain errors for engine construction and orchestration.
var (
	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("glide: parameter out of valid bounds")

	// ErrDimensionMismatch indicates a node buffer of the wrong length.
	ErrDimensionMismatch = errors.New("glide: dimension mismatch between buffer and tether")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
