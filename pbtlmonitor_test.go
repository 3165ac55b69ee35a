package pbtlmonitor

import (
	"strings"
	"testing"

	"pbtlmonitor/event"
	"pbtlmonitor/verdict"
)

func TestCheckWithDirective(t *testing.T) {
	csv := "# system_processes: P\n" +
		"eid,processes,vc,props\n" +
		"e1,P,P:1,request\n" +
		"e2,P,P:2,response\n"

	res, err := Check("EP(request) & EP(response)", strings.NewReader(csv), nil, false)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Verdict != verdict.True {
		t.Fatalf("verdict = %v, want TRUE", res.Verdict)
	}
	ok, msg := res.Response()
	if !ok {
		t.Fatalf("Response() ok = false, msg = %q", msg)
	}
}

func TestCheckInfersProcessesWithoutDirective(t *testing.T) {
	csv := "eid,processes,vc,props\n" +
		"e1,P,P:1,request\n"

	res, err := Check("EP(request)", strings.NewReader(csv), nil, true)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Verdict != verdict.True {
		t.Fatalf("verdict = %v, want TRUE", res.Verdict)
	}
}

func TestCheckFailsClosedWithoutDirectiveOrOptIn(t *testing.T) {
	csv := "eid,processes,vc,props\n" +
		"e1,P,P:1,request\n"

	_, err := Check("EP(request)", strings.NewReader(csv), nil, false)
	if err == nil {
		t.Fatalf("expected Check to fail closed when no directive is present and inference is not allowed")
	}
}

func TestCheckPropagatesTraceErrors(t *testing.T) {
	csv := "eid,processes,vc\n" +
		"e1,P,P:1\n"
	_, err := Check("EP(request)", strings.NewReader(csv), []event.ProcessID{"P"}, false)
	if err == nil {
		t.Fatalf("expected an error for a trace missing the props column")
	}
}
