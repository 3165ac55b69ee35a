package monitor

import "fmt"

// InternalInvariantError indicates a defect: a condition the design
// believes can never occur at runtime.
type InternalInvariantError struct {
	Msg string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant violated: " + e.Msg
}

// RunConfigError is returned when a YAML run configuration fails to load
// or is missing required fields.
type RunConfigError struct {
	Path string
	Msg  string
}

func (e *RunConfigError) Error() string {
	return fmt.Sprintf("run config %q: %s", e.Path, e.Msg)
}
