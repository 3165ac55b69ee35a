package frontier

import (
	"fmt"

	"pbtlmonitor/event"
)

// CausalityViolation is returned when an incoming event's vector clock is
// inconsistent with a previously absorbed event: the participating
// process's component did not strictly increase, or the event claims newer
// knowledge of a non-participant than a frontier has (unless lenient
// causality is enabled). It is also returned when the event references a
// process outside the declared set.
type CausalityViolation struct {
	EventID event.ID
	Process event.ProcessID
	Msg     string
}

func (e *CausalityViolation) Error() string {
	return fmt.Sprintf("causality violation at event %s on process %s: %s", e.EventID, e.Process, e.Msg)
}

// InternalInvariantError indicates a defect: a condition the design
// believes can never occur at runtime.
type InternalInvariantError struct {
	Msg string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant violated: " + e.Msg
}
