package trace

import (
	"strings"
	"testing"

	"pbtlmonitor/event"
)

func TestReadWithDirective(t *testing.T) {
	src := "# system_processes: PA|PB\n" +
		"eid,processes,vc,props\n" +
		"ev1,PA,PA:1;PB:0,request\n" +
		"ev2,PB,PA:1;PB:1,response\n"

	events, processes, err := Read(strings.NewReader(src), nil, true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(processes) != 2 {
		t.Fatalf("processes = %v, want 2 entries", processes)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID != "ev1" || !events[0].HasProp("request") {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].VC.At("PA") != 1 || events[1].VC.At("PB") != 1 {
		t.Fatalf("events[1].VC = %v", events[1].VC)
	}
}

func TestReadWithoutDirectiveInfersFromRows(t *testing.T) {
	src := "eid,processes,vc,props\n" +
		"ev1,PA,PA:1,request\n"
	events, processes, err := Read(strings.NewReader(src), nil, true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(processes) != 1 || processes[0] != event.ProcessID("PA") {
		t.Fatalf("processes = %v, want [PA]", processes)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestReadMultipleProcessesAndProps(t *testing.T) {
	src := "eid,processes,vc,props\n" +
		"ev1,PA|PB,PA:1;PB:1,p|q\n"
	events, _, err := Read(strings.NewReader(src), nil, true)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events[0].Processes) != 2 {
		t.Fatalf("Processes = %v", events[0].Processes)
	}
	if !events[0].HasProp("p") || !events[0].HasProp("q") {
		t.Fatalf("Props = %v", events[0].Props)
	}
}

func TestReadMissingHeaderColumn(t *testing.T) {
	src := "eid,processes,vc\nev1,PA,PA:1\n"
	_, _, err := Read(strings.NewReader(src), nil, true)
	if err == nil {
		t.Fatalf("expected FormatError for missing 'props' column")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("error = %T, want *FormatError", err)
	}
}

func TestReadUndeclaredProcess(t *testing.T) {
	src := "# system_processes: PA\n" +
		"eid,processes,vc,props\n" +
		"ev1,PB,PB:1,x\n"
	_, _, err := Read(strings.NewReader(src), nil, true)
	if err == nil {
		t.Fatalf("expected FormatError for event on undeclared process")
	}
}

func TestReadWithoutDirectiveFailsClosedByDefault(t *testing.T) {
	src := "eid,processes,vc,props\n" +
		"ev1,PA,PA:1,request\n"
	_, _, err := Read(strings.NewReader(src), nil, false)
	if err == nil {
		t.Fatalf("expected FormatError when no directive is present and inference is not allowed")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("error = %T, want *FormatError", err)
	}
}

func TestReadDeclaredProcessesSatisfyTheDirectiveRequirement(t *testing.T) {
	src := "eid,processes,vc,props\n" +
		"ev1,PA,PA:1,request\n"
	_, processes, err := Read(strings.NewReader(src), []event.ProcessID{"PA"}, false)
	if err != nil {
		t.Fatalf("Read with declaredProcesses and allowInferred=false should not fail closed: %v", err)
	}
	if len(processes) != 1 || processes[0] != event.ProcessID("PA") {
		t.Fatalf("processes = %v, want [PA]", processes)
	}
}

func TestInferProcesses(t *testing.T) {
	events := []event.Event{
		{ID: "e1", Processes: []event.ProcessID{"A"}, VC: event.NewVectorClock([]event.ProcessID{"A", "B"}, nil)},
	}
	procs := InferProcesses(events)
	if len(procs) != 2 {
		t.Fatalf("InferProcesses = %v, want 2 entries", procs)
	}
}
