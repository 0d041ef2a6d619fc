package types

import "errors"

// Sentinel errors for the nudging subsystem. Callers match with errors.Is;
// every site that returns one wraps it with fmt.Errorf("%w: ...") carrying
// the file path or time range that triggered it.
var (
	// ErrConfig indicates missing or invalid configuration, including a
	// target field that does not exist on the grid. Raised at initialize.
	ErrConfig = errors.New("invalid nudging configuration")

	// ErrDataFormat indicates a reference dataset whose shape or level
	// coordinates disagree with what was recorded at initialization.
	ErrDataFormat = errors.New("reference dataset format error")

	// ErrDataExhausted indicates the simulation clock has moved outside
	// the time range covered by the reference dataset.
	ErrDataExhausted = errors.New("reference dataset exhausted")

	// ErrInvalidState indicates a lifecycle method called out of order.
	ErrInvalidState = errors.New("invalid process state")
)
