// Package frontier maintains the growing set of consistent cuts (the
// frontier set F) that a running PBTL monitor uses as its model of "every
// causally consistent point the trace could currently be observed at".
package frontier

import (
	"fmt"
	"sort"
	"strings"

	"pbtlmonitor/event"
)

// Frontier is an immutable mapping from every declared process to its
// most recent event within a consistent cut, together with the
// accumulated propositions true at the cut itself and in its full causal
// past. Frontier values are never mutated after construction; Absorb
// always produces new Frontier values.
type Frontier struct {
	latest     map[event.ProcessID]event.ID
	atFrontier map[event.Proposition]struct{}
	pastProps  map[event.Proposition]struct{}
}

// At returns the ID of the event most recently observed on p within f.
func (f Frontier) At(p event.ProcessID) event.ID {
	return f.latest[p]
}

// HoldsNow reports whether p holds at the frontier itself: the M-literal
// test.
func (f Frontier) HoldsNow(p event.Proposition) bool {
	_, ok := f.atFrontier[p]
	return ok
}

// HeldInPast reports whether p holds somewhere in f's causal past,
// including at the frontier itself: the P-literal test.
func (f Frontier) HeldInPast(p event.Proposition) bool {
	_, ok := f.pastProps[p]
	return ok
}

func (f Frontier) String() string {
	procs := make([]string, 0, len(f.latest))
	for p := range f.latest {
		procs = append(procs, string(p))
	}
	sort.Strings(procs)
	parts := make([]string, len(procs))
	for i, p := range procs {
		parts[i] = fmt.Sprintf("%s=%s", p, f.latest[event.ProcessID(p)])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// equal reports whether f and other name the same latest event on every
// process. Two equal frontiers always carry identical prop sets, since
// those are derived solely from the latest map plus absorption history.
func (f Frontier) equal(other Frontier) bool {
	if len(f.latest) != len(other.latest) {
		return false
	}
	for p, id := range f.latest {
		if other.latest[p] != id {
			return false
		}
	}
	return true
}

// dominates reports whether f is at least as causally advanced as other
// on every process, and strictly ahead on at least one — meaning any
// future extension reachable from other is also reachable from f, so
// other is safe to retire.
func (f Frontier) dominates(other Frontier, arena *event.Arena) bool {
	strict := false
	for p, otherID := range other.latest {
		fID, ok := f.latest[p]
		if !ok {
			return false
		}
		if fID == otherID {
			continue
		}
		fEvt, ok1 := arena.Get(fID)
		otherEvt, ok2 := arena.Get(otherID)
		if !ok1 || !ok2 {
			return false
		}
		if fEvt.VC.At(p) < otherEvt.VC.At(p) {
			return false
		}
		strict = true
	}
	return strict
}
