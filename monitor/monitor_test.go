package monitor

import (
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pbtlmonitor/event"
	"pbtlmonitor/verdict"
)

func ev(id event.ID, procs []event.ProcessID, vc map[event.ProcessID]uint64, props ...event.Proposition) event.Event {
	propSet := make(map[event.Proposition]struct{}, len(props))
	for _, p := range props {
		propSet[p] = struct{}{}
	}
	all := make([]event.ProcessID, 0, len(vc))
	for p := range vc {
		all = append(all, p)
	}
	return event.Event{ID: id, Processes: procs, VC: event.NewVectorClock(all, vc), Props: propSet}
}

func TestMonitorRunRequestResponse(t *testing.T) {
	defer goleak.VerifyNone(t)
	procs := []event.ProcessID{"P"}
	m, err := New("EP(EP(request) & EP(response))", procs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	events := []event.Event{
		ev("e1", procs, map[event.ProcessID]uint64{"P": 1}, "request"),
		ev("e2", procs, map[event.ProcessID]uint64{"P": 2}, "response"),
	}
	v, hist, err := m.Run(events)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v != verdict.True {
		t.Fatalf("verdict = %v, want TRUE", v)
	}
	if hist.FinalVerdict() != verdict.True {
		t.Fatalf("FinalVerdict = %v, want TRUE", hist.FinalVerdict())
	}
	if hist[0].Verdict != verdict.Inconclusive {
		t.Fatalf("hist[0] = %v, want INCONCLUSIVE before response", hist[0].Verdict)
	}
}

func TestMonitorStopOnVerdict(t *testing.T) {
	procs := []event.ProcessID{"P"}
	m, err := New("ok", procs, WithStopOnVerdict())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := []event.Event{
		ev("e1", procs, map[event.ProcessID]uint64{"P": 1}, "ok"),
		ev("e2", procs, map[event.ProcessID]uint64{"P": 2}, "irrelevant"),
	}
	_, hist, err := m.Run(events)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected Run to stop after the first event, got %d entries", len(hist))
	}
}

func TestMonitorCausalityViolationPropagates(t *testing.T) {
	procs := []event.ProcessID{"P"}
	m, err := New("ok", procs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := []event.Event{
		ev("e1", procs, map[event.ProcessID]uint64{"P": 1}),
		ev("e2", procs, map[event.ProcessID]uint64{"P": 1}),
	}
	_, _, err = m.Run(events)
	if err == nil {
		t.Fatalf("expected an error for a non-monotonic clock")
	}
}

func TestMonitorLenientCausality(t *testing.T) {
	procs := []event.ProcessID{"P", "Q"}
	m, err := New("ok", procs, WithLenientCausality())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := []event.Event{
		ev("eq", []event.ProcessID{"Q"}, map[event.ProcessID]uint64{"P": 1, "Q": 1}),
	}
	_, _, err = m.Run(events)
	if err != nil {
		t.Fatalf("Run with lenient causality should not error: %v", err)
	}
}

func TestMonitorDebugLoggingReportsAbsorbedEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	procs := []event.ProcessID{"P"}
	m, err := New("EP(request)", procs, WithDebug(), WithVerbose(), WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := []event.Event{
		ev("e1", procs, map[event.ProcessID]uint64{"P": 1}, "request"),
	}
	if _, _, err := m.Run(events); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries := logs.All()
	var sawAbsorbedEvent, sawDisjunctEvaluated bool
	for _, e := range entries {
		switch e.Message {
		case "absorbed event":
			sawAbsorbedEvent = true
			fields := e.ContextMap()
			if fields["eid"] != "e1" {
				t.Fatalf("absorbed event eid = %v, want e1", fields["eid"])
			}
			if _, ok := fields["participants"]; !ok {
				t.Fatalf("absorbed event log missing participants field")
			}
			if _, ok := fields["vc"]; !ok {
				t.Fatalf("absorbed event log missing vc field")
			}
			if _, ok := fields["frontier_count"]; !ok {
				t.Fatalf("absorbed event log missing frontier_count field")
			}
		case "disjunct evaluated":
			sawDisjunctEvaluated = true
		}
	}
	if !sawAbsorbedEvent {
		t.Fatalf("expected a debug log entry for the absorbed event, got %v", entries)
	}
	if !sawDisjunctEvaluated {
		t.Fatalf("expected WithVerbose to produce a per-disjunct debug log entry, got %v", entries)
	}
}

func TestMonitorWithoutLoggerOptionsAreNoOps(t *testing.T) {
	defer goleak.VerifyNone(t)
	procs := []event.ProcessID{"P"}
	m, err := New("EP(request)", procs, WithDebug(), WithVerbose())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := []event.Event{
		ev("e1", procs, map[event.ProcessID]uint64{"P": 1}, "request"),
	}
	if _, _, err := m.Run(events); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
