// Package event defines the primitive data structures of the monitored
// system: process identifiers, vector clocks, and the immutable events
// that make up an observed trace.
package event

import (
	"fmt"
	"sort"
	"strings"
)

// ProcessID identifies one process in the monitored system.
type ProcessID string

// Proposition is an atomic label that can hold immediately after an event.
type Proposition string

// IotaProposition is the distinguished proposition that marks the
// sentinel initial state of every process.
const IotaProposition Proposition = "iota"

// ID uniquely identifies an event within a trace.
type ID string

// VectorClock is a total mapping from every declared process to a
// non-negative logical timestamp. The zero value is not usable; build one
// with NewVectorClock or NewZeroVectorClock.
type VectorClock struct {
	processes []ProcessID
	ts        map[ProcessID]uint64
}

// NewZeroVectorClock returns a vector clock over procs with every
// timestamp set to zero (the "iota" clock).
func NewZeroVectorClock(procs []ProcessID) VectorClock {
	ts := make(map[ProcessID]uint64, len(procs))
	for _, p := range procs {
		ts[p] = 0
	}
	return VectorClock{processes: append([]ProcessID{}, procs...), ts: ts}
}

// NewVectorClock builds a vector clock over procs from the provided
// timestamps. Any process in procs absent from ts is set to zero.
func NewVectorClock(procs []ProcessID, ts map[ProcessID]uint64) VectorClock {
	out := NewZeroVectorClock(procs)
	for p, v := range ts {
		out.ts[p] = v
	}
	return out
}

// Processes returns the declared process set, in insertion order.
func (vc VectorClock) Processes() []ProcessID {
	return append([]ProcessID{}, vc.processes...)
}

// At returns the logical timestamp for p. Missing processes read as 0.
func (vc VectorClock) At(p ProcessID) uint64 {
	return vc.ts[p]
}

// WithAt returns a copy of vc with p's timestamp set to n.
func (vc VectorClock) WithAt(p ProcessID, n uint64) VectorClock {
	out := vc.clone()
	out.ts[p] = n
	return out
}

func (vc VectorClock) clone() VectorClock {
	ts := make(map[ProcessID]uint64, len(vc.ts))
	for p, v := range vc.ts {
		ts[p] = v
	}
	return VectorClock{processes: vc.processes, ts: ts}
}

// Max returns the component-wise maximum of vc and other. Both clocks must
// be defined over the same process set.
func (vc VectorClock) Max(other VectorClock) VectorClock {
	out := vc.clone()
	for p, v := range other.ts {
		if v > out.ts[p] {
			out.ts[p] = v
		}
	}
	return out
}

// LessThan reports whether vc happened-before other (vc ≺ other): every
// component of vc is at most the corresponding component of other, and at
// least one is strictly less.
func (vc VectorClock) LessThan(other VectorClock) bool {
	strict := false
	for _, p := range vc.processes {
		a, b := vc.ts[p], other.ts[p]
		if a > b {
			return false
		}
		if a < b {
			strict = true
		}
	}
	return strict
}

// LessOrEqual reports whether every component of vc is at most the
// corresponding component of other.
func (vc VectorClock) LessOrEqual(other VectorClock) bool {
	for _, p := range vc.processes {
		if vc.ts[p] > other.ts[p] {
			return false
		}
	}
	return true
}

// Concurrent reports whether neither vc ≺ other nor other ≺ vc.
func (vc VectorClock) Concurrent(other VectorClock) bool {
	return !vc.LessThan(other) && !other.LessThan(vc)
}

// Equal reports whether vc and other carry identical timestamps for every
// declared process.
func (vc VectorClock) Equal(other VectorClock) bool {
	if len(vc.ts) != len(other.ts) {
		return false
	}
	for p, v := range vc.ts {
		if other.ts[p] != v {
			return false
		}
	}
	return true
}

// String renders the clock as "P:1;Q:0" with processes in declaration order.
func (vc VectorClock) String() string {
	parts := make([]string, 0, len(vc.processes))
	for _, p := range vc.processes {
		parts = append(parts, fmt.Sprintf("%s:%d", p, vc.ts[p]))
	}
	return strings.Join(parts, ";")
}

// Event is an immutable record of something that happened at one or more
// processes. Events are never mutated after construction; frontiers refer
// to them by ID through an Arena rather than holding pointers directly,
// so that cloning a frontier never clones event payloads.
type Event struct {
	ID        ID
	Processes []ProcessID
	VC        VectorClock
	Props     map[Proposition]struct{}
}

// HasProp reports whether p holds immediately after e.
func (e Event) HasProp(p Proposition) bool {
	_, ok := e.Props[p]
	return ok
}

// Participates reports whether p is one of e's participants.
func (e Event) Participates(p ProcessID) bool {
	for _, q := range e.Processes {
		if q == p {
			return true
		}
	}
	return false
}

func (e Event) String() string {
	props := make([]string, 0, len(e.Props))
	for p := range e.Props {
		props = append(props, string(p))
	}
	sort.Strings(props)
	procs := make([]string, len(e.Processes))
	for i, p := range e.Processes {
		procs[i] = string(p)
	}
	return fmt.Sprintf("%s{procs=%s vc=%s props=%s}", e.ID, strings.Join(procs, ","), e.VC, strings.Join(props, "|"))
}

// NewIotaEvent builds the sentinel event a process is initialized with
// before any trace event is observed: zero clock, the single iota
// proposition, and the process itself as sole participant.
func NewIotaEvent(p ProcessID, allProcesses []ProcessID) Event {
	return Event{
		ID:        ID("iota@" + p),
		Processes: []ProcessID{p},
		VC:        NewZeroVectorClock(allProcesses),
		Props:     map[Proposition]struct{}{IotaProposition: {}},
	}
}

// Arena owns every event observed so far, keyed by ID. Frontiers hold IDs
// rather than Event values so that extending a frontier is a cheap map
// write instead of a deep copy of event payloads.
type Arena struct {
	events map[ID]Event
}

// NewArena returns an empty event arena.
func NewArena() *Arena {
	return &Arena{events: make(map[ID]Event)}
}

// Put records e in the arena, overwriting any prior event with the same ID.
func (a *Arena) Put(e Event) {
	a.events[e.ID] = e
}

// Get returns the event stored under id and whether it was found.
func (a *Arena) Get(id ID) (Event, bool) {
	e, ok := a.events[id]
	return e, ok
}
