package diag

import (
	"testing"

	"meterc/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     LntTypeInName,
			Path:     "/workspace/metrics.yaml",
			Header:   "TYPE_IN_NAME",
			Message:  "another",
		},
		{
			Severity: SevError,
			Code:     SchViolation,
			Path:     "/workspace/metrics.yaml",
			Pos:      source.LineCol{Line: 3, Col: 5},
			Header:   "telemetry.latency",
			Message:  "first line\n    second",
			Notes:    []string{"note line"},
		},
	}

	expected := "warning LNT6010 metrics.yaml TYPE_IN_NAME: another\n" +
		"error SCH2003 metrics.yaml:3:5 telemetry.latency: first line second\n" +
		"note SCH2003 metrics.yaml:3:5 telemetry.latency: note line"

	if got := FormatGoldenDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := NewError(MrgDuplicate, "b.yaml", "", "Duplicate metric name 'a.x' already defined in 'a.yaml'")
	want := "b.yaml:\n    Duplicate metric name 'a.x' already defined in 'a.yaml'"
	if got := d.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	d = NewError(SchViolation, "m.yaml", "cat.name", "```\na: 1\n```\n\nbad")
	want = "m.yaml: cat.name:\n    ```\n    a: 1\n    ```\n\n    bad"
	if got := d.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBagSortDedup(t *testing.T) {
	bag := NewBag(0)
	bag.Add(NewWarning(LntSuperfluousNoLint, "b.yaml", "x", "w"))
	bag.Add(NewError(MrgDuplicate, "b.yaml", "", "dup"))
	bag.Add(NewError(MrgDuplicate, "b.yaml", "", "dup"))
	bag.Add(NewError(SchViolation, "a.yaml", "", "v"))

	bag.Dedup()
	bag.Sort()

	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics after dedup, got %d", bag.Len())
	}
	items := bag.Items()
	if items[0].Path != "a.yaml" || items[1].Code != MrgDuplicate || items[2].Severity != SevWarning {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("expected errors and warnings")
	}
	if bag.Count(SevWarning) != 1 {
		t.Fatalf("expected one warning, got %d", bag.Count(SevWarning))
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(IOLoadFileError, "a", "", "1")) {
		t.Fatal("first add must succeed")
	}
	if bag.Add(NewError(IOLoadFileError, "a", "", "2")) {
		t.Fatal("second add must hit the limit")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	ReportError(r, ObjInvalid, "m.yaml", "boom").WithHeader("a.b").Emit()
	ReportError(r, ObjInvalid, "m.yaml", "boom").WithHeader("a.b").Emit()
	ReportError(r, ObjInvalid, "m.yaml", "boom").WithHeader("a.c").At(2, 1).Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if bag.Items()[1].Pos.Line != 2 {
		t.Fatalf("position not recorded: %+v", bag.Items()[1])
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		IOMissingFile:          "IO1002",
		SchViolation:           "SCH2003",
		ObjLifetimeMismatch:    "OBJ3002",
		MrgDuplicate:           "MRG4001",
		XfmDanglingDenominator: "XFM5001",
		LntSuperfluousNoLint:   "LNT6015",
		GenLeftover:            "GEN7005",
		UnknownCode:            "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if got := MrgDuplicate.String(); got != "[MRG4001]: Duplicate definition" {
		t.Errorf("unexpected String(): %q", got)
	}
}
