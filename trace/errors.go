package trace

import "fmt"

// FormatError is returned when a trace file is missing a required header,
// names an undeclared process, or contains a malformed field.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("trace format error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("trace format error: %s", e.Msg)
}
