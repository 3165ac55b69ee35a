package event

import "testing"

func TestVectorClockLessThan(t *testing.T) {
	procs := []ProcessID{"P", "Q"}
	u := NewVectorClock(procs, map[ProcessID]uint64{"P": 1, "Q": 1})
	v := NewVectorClock(procs, map[ProcessID]uint64{"P": 1, "Q": 2})

	if !u.LessThan(v) {
		t.Fatalf("expected %v < %v", u, v)
	}
	if v.LessThan(u) {
		t.Fatalf("did not expect %v < %v", v, u)
	}
	if u.LessThan(u) {
		t.Fatalf("a clock must not be less than itself")
	}
}

func TestVectorClockConcurrent(t *testing.T) {
	procs := []ProcessID{"P", "Q"}
	u := NewVectorClock(procs, map[ProcessID]uint64{"P": 2, "Q": 0})
	v := NewVectorClock(procs, map[ProcessID]uint64{"P": 0, "Q": 2})

	if !u.Concurrent(v) {
		t.Fatalf("expected %v and %v to be concurrent", u, v)
	}
	if !v.Concurrent(u) {
		t.Fatalf("concurrency must be symmetric")
	}
}

func TestVectorClockMax(t *testing.T) {
	procs := []ProcessID{"P", "Q", "R"}
	u := NewVectorClock(procs, map[ProcessID]uint64{"P": 2, "Q": 1, "R": 0})
	v := NewVectorClock(procs, map[ProcessID]uint64{"P": 1, "Q": 3, "R": 1})

	m := u.Max(v)
	want := map[ProcessID]uint64{"P": 2, "Q": 3, "R": 1}
	for p, n := range want {
		if m.At(p) != n {
			t.Errorf("Max()[%s] = %d, want %d", p, m.At(p), n)
		}
	}
}

func TestNewIotaEvent(t *testing.T) {
	procs := []ProcessID{"P", "Q"}
	e := NewIotaEvent("P", procs)

	if !e.HasProp(IotaProposition) {
		t.Errorf("iota event must carry the iota proposition")
	}
	if !e.Participates("P") {
		t.Errorf("iota event for P must participate on P")
	}
	for _, p := range procs {
		if e.VC.At(p) != 0 {
			t.Errorf("iota event clock must be all-zero, got %s", e.VC)
		}
	}
}

func TestArenaPutGet(t *testing.T) {
	a := NewArena()
	e := Event{ID: "e1", Processes: []ProcessID{"P"}}
	a.Put(e)

	got, ok := a.Get("e1")
	if !ok || got.ID != "e1" {
		t.Fatalf("Get(e1) = %v, %v; want e1, true", got, ok)
	}
	if _, ok := a.Get("missing"); ok {
		t.Fatalf("Get(missing) should report not found")
	}
}
