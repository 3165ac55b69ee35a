// Package trace reads a recorded distributed-system execution from a CSV
// file into the ordered sequence of events a monitor absorbs one at a
// time.
package trace

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"pbtlmonitor/event"
)

const systemProcessesPrefix = "# system_processes:"

const (
	columnEventID     = "eid"
	columnProcesses   = "processes"
	columnVectorClock = "vc"
	columnProps       = "props"
)

var requiredColumns = []string{columnEventID, columnProcesses, columnVectorClock, columnProps}

// Read parses a full CSV trace from r. The first line may optionally be a
// "# system_processes: P|Q|R" directive; if absent, declaredProcesses must
// be supplied by the caller, or allowInferred must be true, or Read fails
// closed with a FormatError rather than silently assuming an incomplete
// process set from whatever rows happen to be present.
//
//	eid,processes,vc,props
//	ev1,PA|PB,PA:1;PB:1,p|q
//	ev2,PC,PA:1;PB:1;PC:1,r
func Read(r io.Reader, declaredProcesses []event.ProcessID, allowInferred bool) ([]event.Event, []event.ProcessID, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, &FormatError{Msg: err.Error()}
	}

	directive, rest := splitDirective(content)
	processes := declaredProcesses
	if len(directive) > 0 {
		processes = directive
	}
	if len(processes) == 0 && !allowInferred {
		return nil, nil, &FormatError{Msg: "no system_processes directive; pass declaredProcesses or allowInferred to infer the process set from the trace"}
	}

	reader := csv.NewReader(bytes.NewReader(rest))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, &FormatError{Msg: fmt.Sprintf("failed to read header row: %v", err)}
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, nil, err
	}

	declared := len(processes) > 0

	var events []event.Event
	lineNo := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &FormatError{Line: lineNo + 1, Msg: err.Error()}
		}
		lineNo++

		e, rowProcesses, err := parseRow(row, columns, lineNo, processes)
		if err != nil {
			return nil, nil, err
		}
		if declared {
			for _, p := range rowProcesses {
				if !slices.Contains(processes, p) {
					return nil, nil, &FormatError{Line: lineNo, Msg: fmt.Sprintf("event references undeclared process %q", p)}
				}
			}
		} else {
			for _, p := range e.VC.Processes() {
				if !slices.Contains(processes, p) {
					processes = append(processes, p)
				}
			}
		}
		events = append(events, e)
	}

	if len(processes) == 0 {
		return nil, nil, &FormatError{Msg: "no system_processes directive and no events to infer processes from"}
	}

	// Vector clocks parsed against a partial or absent process set (the
	// common case when the directive is missing and processes accumulate
	// row by row) are rebuilt now that the full domain is fixed.
	for i, e := range events {
		events[i].VC = event.NewVectorClock(processes, clockValues(e.VC))
	}

	return events, processes, nil
}

func clockValues(vc event.VectorClock) map[event.ProcessID]uint64 {
	out := make(map[event.ProcessID]uint64)
	for _, p := range vc.Processes() {
		out[p] = vc.At(p)
	}
	return out
}

// splitDirective checks whether content begins with a "# system_processes:"
// line and, if so, returns the declared processes and the remaining bytes
// with that line removed; otherwise it returns content unchanged.
func splitDirective(content []byte) ([]event.ProcessID, []byte) {
	nl := bytes.IndexByte(content, '\n')
	var firstLine []byte
	var remainder []byte
	if nl == -1 {
		firstLine = content
		remainder = nil
	} else {
		firstLine = content[:nl]
		remainder = content[nl+1:]
	}
	line := strings.TrimRight(string(firstLine), "\r")
	if !strings.HasPrefix(line, systemProcessesPrefix) {
		return nil, content
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, systemProcessesPrefix))
	var procs []event.ProcessID
	for _, p := range strings.Split(rest, "|") {
		p = strings.TrimSpace(p)
		if p != "" {
			procs = append(procs, event.ProcessID(p))
		}
	}
	return procs, remainder
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("missing required column %q", c)}
		}
	}
	return idx, nil
}

func parseRow(row []string, columns map[string]int, lineNo int, processes []event.ProcessID) (event.Event, []event.ProcessID, error) {
	get := func(col string) (string, error) {
		i := columns[col]
		if i >= len(row) {
			return "", &FormatError{Line: lineNo, Msg: fmt.Sprintf("row is missing column %q", col)}
		}
		return row[i], nil
	}

	eid, err := get(columnEventID)
	if err != nil {
		return event.Event{}, nil, err
	}
	eid = strings.TrimSpace(eid)
	if eid == "" {
		return event.Event{}, nil, &FormatError{Line: lineNo, Msg: "empty eid"}
	}

	procsField, err := get(columnProcesses)
	if err != nil {
		return event.Event{}, nil, err
	}
	procs := parsePipeList(procsField)
	if len(procs) == 0 {
		return event.Event{}, nil, &FormatError{Line: lineNo, Msg: "empty processes field"}
	}
	eventProcesses := make([]event.ProcessID, len(procs))
	for i, p := range procs {
		eventProcesses[i] = event.ProcessID(p)
	}

	vcField, err := get(columnVectorClock)
	if err != nil {
		return event.Event{}, nil, err
	}
	vcValues, err := parseVectorClockField(vcField)
	if err != nil {
		return event.Event{}, nil, &FormatError{Line: lineNo, Msg: err.Error()}
	}

	clockDomain := append([]event.ProcessID{}, processes...)
	for p := range vcValues {
		if !slices.Contains(clockDomain, p) {
			clockDomain = append(clockDomain, p)
		}
	}
	for _, p := range eventProcesses {
		if !slices.Contains(clockDomain, p) {
			clockDomain = append(clockDomain, p)
		}
	}

	propsField, err := get(columnProps)
	if err != nil {
		return event.Event{}, nil, err
	}
	propNames := parsePipeList(propsField)
	props := make(map[event.Proposition]struct{}, len(propNames))
	for _, p := range propNames {
		props[event.Proposition(p)] = struct{}{}
	}

	e := event.Event{
		ID:        event.ID(eid),
		Processes: eventProcesses,
		VC:        event.NewVectorClock(clockDomain, vcValues),
		Props:     props,
	}
	return e, eventProcesses, nil
}

func parsePipeList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseVectorClockField(s string) (map[event.ProcessID]uint64, error) {
	out := make(map[event.ProcessID]uint64)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, component := range strings.Split(s, ";") {
		component = strings.TrimSpace(component)
		if component == "" {
			continue
		}
		parts := strings.SplitN(component, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid vector clock component %q", component)
		}
		proc := strings.TrimSpace(parts[0])
		ts, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector clock timestamp in %q: %w", component, err)
		}
		out[event.ProcessID(proc)] = ts
	}
	return out, nil
}

// InferProcesses collects the union of every process participating in or
// named by the vector clock of any event, for callers reading a trace
// with no system_processes directive and who did not supply one of their
// own.
func InferProcesses(events []event.Event) []event.ProcessID {
	var out []event.ProcessID
	for _, e := range events {
		for _, p := range e.Processes {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
		for _, p := range e.VC.Processes() {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}
