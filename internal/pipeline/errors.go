package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest wraps request validation failures returned by Run.
var ErrInvalidRequest = errors.New("invalid evidence request")

// ExtractionError reports a panic recovered inside a heuristic stage.
type ExtractionError struct {
	Stage string
	Cause any
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("internal failure during %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the panic value when it was an error.
func (e *ExtractionError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
