package evaluator

import (
	"go.uber.org/zap"

	"pbtlmonitor/dlnf"
	"pbtlmonitor/frontier"
	"pbtlmonitor/verdict"
)

// FormulaEvaluator tracks the combined verdict of every disjunct in a
// DLNF formula as the underlying frontier set grows.
type FormulaEvaluator struct {
	formula dlnf.DLNF
	states  []*DisjunctState
}

// NewFormulaEvaluator seeds per-disjunct state for every disjunct in f.
// A DLNF with no disjuncts at all is the vacuously false formula.
func NewFormulaEvaluator(f dlnf.DLNF) *FormulaEvaluator {
	states := make([]*DisjunctState, len(f.Disjuncts))
	for i, d := range f.Disjuncts {
		states[i] = NewDisjunctState(d)
	}
	return &FormulaEvaluator{formula: f, states: states}
}

// SetLogger attaches a logger to every disjunct state so Update reports
// per-disjunct evaluation detail at debug level (the --verbose behavior).
func (e *FormulaEvaluator) SetLogger(log *zap.SugaredLogger) {
	for _, s := range e.states {
		s.SetLogger(log)
	}
}

// Update re-evaluates every non-terminal disjunct against store's current
// frontier set and returns the combined formula verdict.
func (e *FormulaEvaluator) Update(store *frontier.Store) verdict.Verdict {
	for _, s := range e.states {
		s.Update(store)
	}
	return e.Verdict()
}

// Verdict returns the formula's current combined verdict without
// re-evaluating any disjunct.
func (e *FormulaEvaluator) Verdict() verdict.Verdict {
	if len(e.states) == 0 {
		return verdict.False
	}
	acc := verdict.False
	for _, s := range e.states {
		acc = verdict.Combine(acc, s.Verdict())
	}
	return acc
}

// Witness returns a human-readable description of the disjunct (and
// frontier) responsible for a TRUE verdict, or "" if none has fired yet.
func (e *FormulaEvaluator) Witness() string {
	for i, s := range e.states {
		if s.Verdict() == verdict.True {
			return e.formula.Disjuncts[i].String() + " @ " + s.Witness()
		}
	}
	return ""
}

// DisjunctStates exposes the per-disjunct states, e.g. for --debug-final
// reporting of which disjuncts remain inconclusive.
func (e *FormulaEvaluator) DisjunctStates() []*DisjunctState {
	return append([]*DisjunctState{}, e.states...)
}
