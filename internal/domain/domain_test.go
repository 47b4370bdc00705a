package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSendLog_JSONRoundTrip(t *testing.T) {
	want := SendLog{
		"s-1": {NumSends: 3, LastSendDT: "2021-05-10T10:00:00.123456+00:00", CenterName: "PHC Wagholi"},
		"s-2": {NumSends: 0},
	}
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got SendLog
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("mismatch after round-trip:\nwant=%+v\ngot =%+v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %s: want=%+v got=%+v", k, v, got[k])
		}
	}
}

func TestSendLog_FivePerWindowThenReset(t *testing.T) {
	l := SendLog{}
	start := time.Date(2021, 5, 10, 10, 0, 0, 0, time.UTC)

	for i := 0; i < MaxSendsPerWindow; i++ {
		if !l.Admit("s", "C", start.Add(time.Duration(i)*time.Minute)) {
			t.Fatalf("send %d should be admitted", i+1)
		}
	}
	before := l["s"]
	sixth := start.Add(10 * time.Minute)
	if l.Admit("s", "C", sixth) {
		t.Fatalf("6th attempt inside the window must be suppressed")
	}
	if l["s"] != before {
		t.Fatalf("suppressed attempt must not touch the entry: %+v -> %+v", before, l["s"])
	}

	// window is measured from the last recorded send
	last, _ := before.LastSend()
	later := last.Add(SendWindow + time.Second)
	if !l.Admit("s", "C", later) {
		t.Fatalf("expected admission after the window elapsed")
	}
	if l["s"].NumSends != 1 {
		t.Fatalf("want counter reset to 1, got %d", l["s"].NumSends)
	}
}

func TestSendLog_WindowRunsFromLastSend(t *testing.T) {
	l := SendLog{}
	first := time.Date(2021, 5, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < MaxSendsPerWindow; i++ {
		if !l.Admit("s", "C", first.Add(time.Duration(i)*10*time.Minute)) {
			t.Fatalf("send %d should be admitted", i+1)
		}
	}
	// last send at +40m: an hour after the first send is still inside the window
	if l.Admit("s", "C", first.Add(61*time.Minute)) {
		t.Fatalf("attempt 61m after the first send must still be suppressed")
	}
	if !l.Admit("s", "C", first.Add(101*time.Minute)) {
		t.Fatalf("attempt 61m after the last send must be admitted")
	}
}

func TestSendLog_ParsesPythonTimestamps(t *testing.T) {
	e := SendLogEntry{NumSends: 6, LastSendDT: "2021-05-10T10:00:00.123456+00:00"}
	ts, ok := e.LastSend()
	if !ok || ts.Minute() != 0 || ts.Hour() != 10 {
		t.Fatalf("parse failed: %v %v", ts, ok)
	}
	l := SendLog{"x": e}
	if !l.Limited("x", ts.Add(30*time.Minute)) {
		t.Fatalf("legacy entry with 6 sends should be limited")
	}
}

func TestSendLog_Prune(t *testing.T) {
	now := time.Date(2021, 5, 20, 0, 0, 0, 0, time.UTC)
	l := SendLog{
		"old":   {NumSends: 1, LastSendDT: now.Add(-200 * time.Hour).Format(time.RFC3339)},
		"fresh": {NumSends: 1, LastSendDT: now.Add(-time.Hour).Format(time.RFC3339)},
		"bare":  {NumSends: 0},
	}
	if n := l.Prune(now, 0); n != 0 {
		t.Fatalf("ttl 0 must disable pruning, removed %d", n)
	}
	if n := l.Prune(now, 168*time.Hour); n != 1 {
		t.Fatalf("want 1 pruned, got %d", n)
	}
	if _, ok := l["old"]; ok {
		t.Fatalf("old entry should be gone")
	}
	if _, ok := l["bare"]; !ok {
		t.Fatalf("entry without timestamp should be kept")
	}
}

func TestRunState(t *testing.T) {
	var rs RunState
	rs.Mark(Bracket18)
	if !rs.Notified(Bracket18) || rs.Notified(Bracket45) || rs.Done() {
		t.Fatalf("unexpected state %+v", rs)
	}
	rs.Mark(Bracket45)
	if !rs.Done() {
		t.Fatalf("want done, got %+v", rs)
	}
	rs.Mark(Bracket(60))
}
