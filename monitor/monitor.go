// Package monitor ties the formula parser, DLNF transformer, frontier
// store, and evaluator together into the single-pass loop that decides a
// property against a trace: parse once, then absorb events one at a time
// until the trace is exhausted or, under WithStopOnVerdict, until the
// verdict is terminal.
package monitor

import (
	"go.uber.org/zap"

	"pbtlmonitor/dlnf"
	"pbtlmonitor/event"
	"pbtlmonitor/evaluator"
	"pbtlmonitor/formula"
	"pbtlmonitor/frontier"
	"pbtlmonitor/verdict"
)

// HistoryEntry records the formula's verdict immediately after absorbing
// one event.
type HistoryEntry struct {
	EventID event.ID
	Verdict verdict.Verdict
	Witness string
}

// History is the sequence of verdict snapshots produced over a run, in
// absorption order.
type History []HistoryEntry

// FinalVerdict returns the last recorded verdict, or INCONCLUSIVE if
// nothing was ever absorbed.
func (h History) FinalVerdict() verdict.Verdict {
	if len(h) == 0 {
		return verdict.Inconclusive
	}
	return h[len(h)-1].Verdict
}

// Monitor evaluates one PBTL property against an incrementally absorbed
// trace.
type Monitor struct {
	cfg       config
	source    formula.Node
	normal    dlnf.DLNF
	store     *frontier.Store
	eval      *evaluator.FormulaEvaluator
	history   History
	processes []event.ProcessID
}

// New builds a Monitor for propertySrc over the declared process set.
func New(propertySrc string, processes []event.ProcessID, opts ...Option) (*Monitor, error) {
	cfg := newConfig(opts)

	n, err := formula.Parse(propertySrc)
	if err != nil {
		return nil, err
	}

	limit := cfg.formulaSizeLimit
	if limit <= 0 {
		limit = dlnf.DefaultSizeLimit
	}
	normal, err := dlnf.TransformWithLimit(n, limit)
	if err != nil {
		return nil, err
	}

	var storeOpts []frontier.Option
	if cfg.lenientCausality {
		storeOpts = append(storeOpts, frontier.WithLenientCausality())
	}

	var sugared *zap.SugaredLogger
	if cfg.logger != nil {
		sugared = cfg.logger.Sugar()
	}
	if cfg.debug && sugared != nil {
		storeOpts = append(storeOpts, frontier.WithLogger(sugared))
	}

	eval := evaluator.NewFormulaEvaluator(normal)
	if cfg.verbose && sugared != nil {
		eval.SetLogger(sugared)
	}

	return &Monitor{
		cfg:       cfg,
		source:    n,
		normal:    normal,
		store:     frontier.NewStore(processes, storeOpts...),
		eval:      eval,
		processes: processes,
	}, nil
}

// Formula returns the original parsed formula.
func (m *Monitor) Formula() formula.Node {
	return m.source
}

// DLNF returns the formula's normal form.
func (m *Monitor) DLNF() dlnf.DLNF {
	return m.normal
}

// Verdict returns the current combined verdict without absorbing anything.
func (m *Monitor) Verdict() verdict.Verdict {
	return m.eval.Verdict()
}

// History returns every verdict snapshot recorded so far.
func (m *Monitor) History() History {
	return append(History{}, m.history...)
}

// DisjunctStates exposes the per-disjunct evaluator state, e.g. for
// --debug-final reporting of which disjuncts never reached a verdict.
func (m *Monitor) DisjunctStates() []*evaluator.DisjunctState {
	return m.eval.DisjunctStates()
}

// Absorb folds one event into the monitor's frontier store and
// re-evaluates the formula, appending a History entry.
func (m *Monitor) Absorb(e event.Event) (verdict.Verdict, error) {
	if err := m.store.Absorb(e); err != nil {
		return m.Verdict(), err
	}
	v := m.eval.Update(m.store)
	m.history = append(m.history, HistoryEntry{EventID: e.ID, Verdict: v, Witness: m.eval.Witness()})
	m.logEvent(e, v)
	return v, nil
}

func (m *Monitor) logEvent(e event.Event, v verdict.Verdict) {
	if m.cfg.logger == nil {
		return
	}
	participants := make([]string, len(e.Processes))
	for i, p := range e.Processes {
		participants[i] = string(p)
	}
	m.cfg.logger.Sugar().Debugw("absorbed event",
		"eid", string(e.ID),
		"participants", participants,
		"vc", e.VC.String(),
		"frontier_count", len(m.store.Frontiers()),
		"verdict", v.String(),
	)
}

// Run absorbs every event in order, stopping early once the verdict
// becomes terminal if WithStopOnVerdict was supplied. It returns the
// final verdict and the full history accumulated up to that point.
func (m *Monitor) Run(events []event.Event) (verdict.Verdict, History, error) {
	for _, e := range events {
		v, err := m.Absorb(e)
		if err != nil {
			return m.Verdict(), m.History(), err
		}
		if m.cfg.stopOnVerdict && v.Terminal() {
			break
		}
	}
	return m.Verdict(), m.History(), nil
}
