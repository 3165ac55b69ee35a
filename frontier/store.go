package frontier

import (
	"golang.org/x/exp/slices"
	"go.uber.org/zap"

	"pbtlmonitor/event"
)

// Store holds the growing frontier set F and the event arena it is defined
// over. Absorbing an event always retains a frontier that the event hasn't
// caught up to yet for possible future extension; it only rejects the
// event outright as a causality violation when the event itself is
// malformed with respect to what's already been absorbed (a participant's
// clock failing to strictly increase, or a non-participant's clock
// claiming knowledge a frontier doesn't have).
type Store struct {
	arena     *event.Arena
	processes []event.ProcessID
	frontiers []Frontier

	// lastClock tracks, per process, the timestamp of the most recently
	// absorbed event that named that process as a participant. This is a
	// global (not per-frontier) monotonicity check: a process's own event
	// sequence is totally ordered regardless of how many frontiers are
	// currently tracking it.
	lastClock map[event.ProcessID]uint64

	lenient bool

	// log, when non-nil, receives one record per accept/retain/retire
	// decision made during Absorb. Left nil unless WithLogger is passed.
	log *zap.SugaredLogger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithLenientCausality makes Absorb tolerate an event whose vector clock
// claims newer knowledge of a non-participant process than a frontier
// already has: by default this is a CausalityViolation (the trace is
// assumed to deliver events in an order consistent with causality), but
// under this option the frontier is simply retained unextended instead,
// trading completeness for resilience against out-of-order input. It has
// no bearing on the baseline predecessor-readiness check, which always
// retains rather than rejects.
func WithLenientCausality() Option {
	return func(s *Store) { s.lenient = true }
}

// WithLogger attaches a logger that Absorb uses to record its per-frontier
// accept/retain/retire decisions at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore builds a store over the declared process set, seeded with the
// single initial frontier F0 in which every process maps to its iota
// sentinel event.
func NewStore(processes []event.ProcessID, opts ...Option) *Store {
	arena := event.NewArena()
	latest := make(map[event.ProcessID]event.ID, len(processes))
	atFrontier := make(map[event.Proposition]struct{})
	pastProps := make(map[event.Proposition]struct{})
	for _, p := range processes {
		iota := event.NewIotaEvent(p, processes)
		arena.Put(iota)
		latest[p] = iota.ID
	}
	atFrontier[event.IotaProposition] = struct{}{}
	pastProps[event.IotaProposition] = struct{}{}

	f0 := Frontier{latest: latest, atFrontier: atFrontier, pastProps: pastProps}
	s := &Store{
		arena:     arena,
		processes: append([]event.ProcessID{}, processes...),
		frontiers: []Frontier{f0},
		lastClock: make(map[event.ProcessID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arena exposes the underlying event arena, e.g. for diagnostics.
func (s *Store) Arena() *event.Arena {
	return s.arena
}

// Frontiers returns the current frontier set, in witness order.
func (s *Store) Frontiers() []Frontier {
	return append([]Frontier{}, s.frontiers...)
}

// Absorb folds e into the frontier set, returning a CausalityViolation if
// e names an undeclared process, if its vector clock does not strictly
// increase on a participating process, or if it claims newer knowledge of
// a non-participant than a frontier has (unless WithLenientCausality was
// given, in which case the affected frontier is retained unextended
// instead of failing the whole call).
func (s *Store) Absorb(e event.Event) error {
	for _, p := range e.Processes {
		if !slices.Contains(s.processes, p) {
			return &CausalityViolation{EventID: e.ID, Process: p, Msg: "event names a process outside the declared set"}
		}
	}
	for _, p := range e.Processes {
		if last, ok := s.lastClock[p]; ok && e.VC.At(p) <= last {
			return &CausalityViolation{
				EventID: e.ID,
				Process: p,
				Msg:     "vector clock did not strictly increase on its own participating process",
			}
		}
	}

	s.arena.Put(e)

	next := make([]Frontier, 0, len(s.frontiers)+1)
	for i, f := range s.frontiers {
		if !s.predecessorReady(f, e) {
			// f is already at or past e on one of e's participants, so e
			// cannot extend it: this is the baseline case, not an error, and
			// f is kept as-is for a later event to extend.
			s.logDecision(i, e, "retain", "frontier already at or past e on a participant")
			next = append(next, f)
			continue
		}
		if !s.nonParticipantConsistent(f, e) {
			if !s.lenient {
				return &CausalityViolation{
					EventID: e.ID,
					Process: e.Processes[0],
					Msg:     "event claims newer knowledge of a non-participant than this frontier has",
				}
			}
			s.logDecision(i, e, "retain", "event overreaches a non-participant's knowledge at this frontier")
			next = append(next, f)
			continue
		}
		extended, err := s.extend(f, e)
		if err != nil {
			return err
		}
		s.logDecision(i, e, "accept", "frontier extended by this event")
		next = append(next, extended)
	}
	next = s.dedupeFrontiers(next)
	next = s.pruneDominated(next)

	s.frontiers = next
	for _, p := range e.Processes {
		s.lastClock[p] = e.VC.At(p)
	}
	return nil
}

// predecessorReady reports whether every one of e's participants has, in
// f, an entry strictly behind e on that process: f[p].vc[p] <=
// e.vc[p]-1. The entry need not be e's immediate predecessor. A frontier
// failing this is unconditionally retained by Absorb; this is never a
// CausalityViolation.
func (s *Store) predecessorReady(f Frontier, e event.Event) bool {
	for _, p := range e.Processes {
		prev, ok := s.arena.Get(f.latest[p])
		if !ok {
			return false
		}
		if prev.VC.At(p) >= e.VC.At(p) {
			return false
		}
	}
	return true
}

// nonParticipantConsistent reports whether e claims no newer knowledge of
// any non-participant process than f already has. A frontier failing this
// check is either a CausalityViolation or, under WithLenientCausality,
// retained unextended.
func (s *Store) nonParticipantConsistent(f Frontier, e event.Event) bool {
	for _, q := range s.processes {
		if e.Participates(q) {
			continue
		}
		prev, ok := s.arena.Get(f.latest[q])
		if !ok {
			return false
		}
		if e.VC.At(q) > prev.VC.At(q) {
			return false
		}
	}
	return true
}

// extend builds the candidate frontier f' that results from replacing
// every participant's entry in f with e, verifying mutual causal
// consistency between every pair of entries in the result.
func (s *Store) extend(f Frontier, e event.Event) (Frontier, error) {
	latest := make(map[event.ProcessID]event.ID, len(f.latest))
	for p, id := range f.latest {
		latest[p] = id
	}
	for _, p := range e.Processes {
		latest[p] = e.ID
	}

	atFrontier := make(map[event.Proposition]struct{})
	for _, id := range latest {
		evt, ok := s.arena.Get(id)
		if !ok {
			return Frontier{}, &InternalInvariantError{Msg: "frontier entry references an event missing from the arena"}
		}
		for prop := range evt.Props {
			atFrontier[prop] = struct{}{}
		}
	}

	pastProps := make(map[event.Proposition]struct{}, len(f.pastProps)+len(e.Props))
	for prop := range f.pastProps {
		pastProps[prop] = struct{}{}
	}
	for prop := range e.Props {
		pastProps[prop] = struct{}{}
	}

	candidate := Frontier{latest: latest, atFrontier: atFrontier, pastProps: pastProps}
	if err := s.checkMutualConsistency(candidate); err != nil {
		return Frontier{}, err
	}
	return candidate, nil
}

func (s *Store) checkMutualConsistency(f Frontier) error {
	for _, p := range s.processes {
		pEvt, ok := s.arena.Get(f.latest[p])
		if !ok {
			return &InternalInvariantError{Msg: "frontier entry references an event missing from the arena"}
		}
		for _, q := range s.processes {
			if p == q {
				continue
			}
			qEvt, ok := s.arena.Get(f.latest[q])
			if !ok {
				return &InternalInvariantError{Msg: "frontier entry references an event missing from the arena"}
			}
			if pEvt.VC.At(q) > qEvt.VC.At(q) {
				return &InternalInvariantError{
					Msg: "derived frontier is not mutually causally consistent (readiness check should have prevented this)",
				}
			}
		}
	}
	return nil
}

func (s *Store) dedupeFrontiers(fs []Frontier) []Frontier {
	out := make([]Frontier, 0, len(fs))
	for i, f := range fs {
		dup := false
		for _, o := range out {
			if o.equal(f) {
				dup = true
				break
			}
		}
		if dup {
			s.logRetire(i, "duplicate of a surviving frontier")
			continue
		}
		out = append(out, f)
	}
	return out
}

// pruneDominated drops any frontier that is strictly dominated by another
// surviving frontier, bounding the growth of F.
func (s *Store) pruneDominated(fs []Frontier) []Frontier {
	out := make([]Frontier, 0, len(fs))
	for i, f := range fs {
		dominated := false
		for j, other := range fs {
			if i == j {
				continue
			}
			if other.dominates(f, s.arena) {
				dominated = true
				break
			}
		}
		if dominated {
			s.logRetire(i, "dominated by another surviving frontier")
			continue
		}
		out = append(out, f)
	}
	return out
}

// logDecision records an accept/retain decision made for the frontier at
// index i of the pre-Absorb frontier set while folding in e.
func (s *Store) logDecision(i int, e event.Event, decision, reason string) {
	if s.log == nil {
		return
	}
	s.log.Debugw("absorb decision",
		"frontier_index", i,
		"event", string(e.ID),
		"decision", decision,
		"reason", reason,
	)
}

// logRetire records that the frontier at index i of the post-fold candidate
// set was dropped during dedup or dominance pruning.
func (s *Store) logRetire(i int, reason string) {
	if s.log == nil {
		return
	}
	s.log.Debugw("absorb decision",
		"frontier_index", i,
		"decision", "retire",
		"reason", reason,
	)
}

// LiteralPermanentlyFalse reports whether the N-literal !EP(p) can never
// again hold for any witness yet to be produced: every frontier currently
// retained in F has already observed p in its causal past, so any future
// extension of any of them will also have observed it.
func (s *Store) LiteralPermanentlyFalse(p event.Proposition) bool {
	for _, f := range s.frontiers {
		if !f.HeldInPast(p) {
			return false
		}
	}
	return true
}
