package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnstable indicates a position or velocity became NaN or Inf.
	ErrUnstable = errors.New("sim: simulation unstable (particle state diverged)")

	// ErrInvalidConfig indicates a run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// SimulationError wraps an error with the frame it happened in.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
