package pipeline

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestEmitStage(t *testing.T) {
	var sink RecordingSink
	EmitQueued(&sink, []string{"a.yaml", "b.yaml"})
	EmitStage(&sink, []string{"a.yaml"}, StageLint, StatusError, errors.New("nits"), time.Millisecond)

	events := sink.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[0].Status != StatusQueued || events[0].Stage != StageLoad {
		t.Errorf("unexpected queued event %+v", events[0])
	}
	if events[2].File != "" || events[3].File != "a.yaml" || events[3].Err == nil {
		t.Errorf("unexpected stage events %+v %+v", events[2], events[3])
	}

	EmitStage(nil, []string{"x"}, StageLoad, StatusDone, nil, 0)
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{Stage: StageWrite, Status: StatusDone})
	if ev := <-ch; ev.Stage != StageWrite {
		t.Errorf("got %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})
}

func TestTimings(t *testing.T) {
	var tm Timings
	if tm.Has(StageLoad) || tm.Duration(StageLoad) != 0 || tm.Sum(StageLoad) != 0 {
		t.Fatal("zero Timings must be empty")
	}
	tm.Set(StageLoad, 2*time.Millisecond)
	tm.Set(StageLint, time.Millisecond)
	if !tm.Has(StageLoad) || tm.Sum(StageLoad, StageLint, StageWrite) != 3*time.Millisecond {
		t.Errorf("unexpected timings %+v", tm)
	}
}

func TestNormalizeFiles(t *testing.T) {
	base := t.TempDir()
	got := NormalizeFiles([]string{
		filepath.Join(base, "b.yaml"),
		filepath.Join(base, "sub", "a.yaml"),
		filepath.Join(base, "b.yaml"),
		"",
	}, base)
	want := []string{"b.yaml", "sub/a.yaml"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if p := DisplayPath("/elsewhere/x.yaml", base); p != "/elsewhere/x.yaml" {
		t.Errorf("outside paths stay absolute, got %q", p)
	}
}
