// Package pbtlmonitor is a thin convenience wrapper around the monitor
// package: parse a property, read a trace, run it, and report a verdict in
// one call, for callers that do not need the incremental Monitor API.
package pbtlmonitor

import (
	"io"

	"pbtlmonitor/event"
	"pbtlmonitor/monitor"
	"pbtlmonitor/trace"
	"pbtlmonitor/verdict"
)

// Result is the outcome of checking one property against one trace.
type Result struct {
	Verdict verdict.Verdict
	History monitor.History
}

// Response renders the result the way a command-line caller would want it
// printed. ok is true only for a TRUE verdict, and the string starts with
// the verdict's name; for a non-TRUE verdict whose last History entry is
// not INCONCLUSIVE, that entry's verdict is appended after a colon. No
// witness trail is included.
func (r Result) Response() (bool, string) {
	if r.Verdict == verdict.True {
		return true, r.Verdict.String()
	}
	out := r.Verdict.String()
	if w := r.History.FinalVerdict(); w != verdict.Inconclusive {
		out += ": " + r.History.FinalVerdict().String()
	}
	return false, out
}

// Check parses property, reads a trace from r, and runs the monitor to
// completion. declaredProcesses may be nil, in which case the process set
// is taken from the trace's system_processes directive; if neither is
// present, Check fails closed unless allowInferredProcesses permits
// falling back to the process set implied by the events themselves.
func Check(property string, r io.Reader, declaredProcesses []event.ProcessID, allowInferredProcesses bool, opts ...monitor.Option) (Result, error) {
	events, processes, err := trace.Read(r, declaredProcesses, allowInferredProcesses)
	if err != nil {
		return Result{}, err
	}

	m, err := monitor.New(property, processes, opts...)
	if err != nil {
		return Result{}, err
	}

	v, hist, err := m.Run(events)
	if err != nil {
		return Result{}, err
	}
	return Result{Verdict: v, History: hist}, nil
}
