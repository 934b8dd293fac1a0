package observ

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return clock }

	p := tm.Begin("parse")
	clock = clock.Add(3 * time.Millisecond)
	tm.End(p, "2 files")
	l := tm.Begin("lint")
	clock = clock.Add(time.Millisecond)
	tm.End(l, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 4 {
		t.Fatalf("unexpected report %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "parse") || !strings.Contains(s, "// 2 files") || !strings.Contains(s, "total") {
		t.Errorf("summary:\n%s", s)
	}
}

func TestTimerSpanWithoutProvider(t *testing.T) {
	tm := NewTimer()
	ctx, end := tm.Span(context.Background(), "generate")
	if ctx == nil {
		t.Fatal("nil context")
	}
	end("json")
	if r := tm.Report(); len(r.Phases) != 1 || r.Phases[0].Note != "json" {
		t.Errorf("unexpected report %+v", r)
	}

	var nilTimer *Timer
	_, end = nilTimer.Span(context.Background(), "noop")
	end("")
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{})
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
	if _, err := InitTracer(context.Background(), TracerConfig{Enabled: true, Protocol: "udp"}); err == nil {
		t.Error("expected error for unsupported protocol")
	}
}
