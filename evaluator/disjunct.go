// Package evaluator decides, against a growing frontier set, whether each
// disjunct of a DLNF formula holds, and folds the per-disjunct verdicts
// into an overall three-valued formula verdict.
//
// A disjunct is a conjunction of M/!M/P/N literals (see package dlnf). Its
// evaluation is simpler than it looks because every quantity it needs is
// already cached on each frontier: an M-literal checks the frontier's own
// prop set, a P-literal checks the frontier's accumulated causal-past prop
// set, and an N-literal is refuted the moment that same set ever contains
// its proposition. Because pastProps only grows as the trace advances, a
// witnessed P-literal and a refuted N-literal are both permanent for the
// run, which is what makes the per-disjunct verdict monotonic.
package evaluator

import (
	"fmt"

	"go.uber.org/zap"

	"pbtlmonitor/dlnf"
	"pbtlmonitor/event"
	"pbtlmonitor/frontier"
	"pbtlmonitor/verdict"
)

func toProp(name string) event.Proposition {
	return event.Proposition(name)
}

// DisjunctState tracks one disjunct's progress toward TRUE or FALSE across
// repeated calls to Update as new events are absorbed.
type DisjunctState struct {
	disjunct dlnf.Disjunct
	verdict  verdict.Verdict
	witness  string

	// log, when non-nil, receives one record per Update call that
	// re-evaluates the disjunct, describing its verdict at that point;
	// Update on a disjunct that is already terminal logs nothing. Left nil
	// unless SetLogger is called, i.e. unless --verbose is in effect.
	log *zap.SugaredLogger
}

// NewDisjunctState seeds a disjunct's state, immediately resolving the
// vacuously-true empty conjunction.
func NewDisjunctState(d dlnf.Disjunct) *DisjunctState {
	s := &DisjunctState{disjunct: d, verdict: verdict.Inconclusive}
	if len(d) == 0 {
		s.verdict = verdict.True
		s.witness = "F0 (vacuous)"
	}
	return s
}

// SetLogger attaches a logger that Update uses to report per-disjunct
// evaluation detail at debug level.
func (s *DisjunctState) SetLogger(log *zap.SugaredLogger) {
	s.log = log
}

// Verdict returns the disjunct's current verdict.
func (s *DisjunctState) Verdict() verdict.Verdict {
	return s.verdict
}

// Witness describes the frontier that made the disjunct TRUE, or, for a
// FALSE disjunct, the N-literal that ruled it out; it is empty otherwise.
func (s *DisjunctState) Witness() string {
	return s.witness
}

// Update re-evaluates the disjunct against the store's current frontier
// set. It is a no-op once the disjunct has reached a terminal verdict.
func (s *DisjunctState) Update(store *frontier.Store) {
	if s.verdict.Terminal() {
		return
	}

	for _, f := range store.Frontiers() {
		if s.satisfiedAt(f) {
			s.verdict = verdict.True
			s.witness = f.String()
			s.logEvaluation()
			return
		}
	}

	for _, lit := range s.disjunct {
		if lit.Kind == dlnf.N && store.LiteralPermanentlyFalse(toProp(lit.Prop)) {
			s.verdict = verdict.False
			s.witness = fmt.Sprintf("N-literal !EP(%s) can never again hold", lit.Prop)
			s.logEvaluation()
			return
		}
	}
	s.logEvaluation()
}

func (s *DisjunctState) logEvaluation() {
	if s.log == nil {
		return
	}
	s.log.Debugw("disjunct evaluated",
		"disjunct", s.disjunct.String(),
		"verdict", s.verdict.String(),
		"witness", s.witness,
	)
}

func (s *DisjunctState) satisfiedAt(f frontier.Frontier) bool {
	for _, lit := range s.disjunct {
		switch lit.Kind {
		case dlnf.M:
			if !f.HoldsNow(toProp(lit.Prop)) {
				return false
			}
		case dlnf.NotM:
			if f.HoldsNow(toProp(lit.Prop)) {
				return false
			}
		case dlnf.P:
			if !f.HeldInPast(toProp(lit.Prop)) {
				return false
			}
		case dlnf.N:
			if f.HeldInPast(toProp(lit.Prop)) {
				return false
			}
		}
	}
	return true
}
