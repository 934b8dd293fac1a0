package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"meterc/internal/diag"
	"meterc/internal/lint"
	"meterc/internal/model"
	"meterc/internal/source"
)

func sampleFileSet() *source.FileSet {
	fs := source.NewFileSet()
	fs.AddVirtual("/home/user/project/telemetry/metrics.yaml", []byte("browser:\n  loads:\n    type: counterr\n"))
	fs.SetBaseDir("/home/user/project")
	return fs
}

func sampleDiag() diag.Diagnostic {
	d := diag.NewError(diag.SchViolation, "/home/user/project/telemetry/metrics.yaml", "browser.loads", "'counterr' is not one of the allowed types")
	d.Pos = source.LineCol{Line: 3, Col: 11}
	return d.WithNote("see the metrics schema")
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := sampleFileSet()
	tests := []struct {
		name   string
		mode   PathMode
		prefix string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/telemetry/metrics.yaml:3:11"},
		{"Auto shortens long absolute paths", PathModeAuto, "metrics.yaml:3:11"},
		{"Relative path", PathModeRelative, "telemetry/metrics.yaml:3:11"},
		{"Basename only", PathModeBasename, "metrics.yaml:3:11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, []diag.Diagnostic{sampleDiag()}, fs, PrettyOpts{PathMode: tt.mode})
			out := buf.String()
			if !strings.HasPrefix(out, tt.prefix+": ") {
				t.Errorf("Expected output to start with %q, got:\n%s", tt.prefix, out)
			}
			if !strings.Contains(out, "ERROR SCH2003: browser.loads") {
				t.Errorf("Expected severity, code and header, got:\n%s", out)
			}
		})
	}
}

func TestPathModeUnknownFile(t *testing.T) {
	if got := displayPath("/a/b/c.yaml", nil, PathModeBasename, ""); got != "c.yaml" {
		t.Errorf("basename = %q", got)
	}
	if got := displayPath("/a/b/c.yaml", nil, PathModeRelative, "/a"); got != "b/c.yaml" {
		t.Errorf("relative = %q", got)
	}
	if mode, ok := ParsePathMode("relative"); !ok || mode != PathModeRelative {
		t.Errorf("ParsePathMode(relative) = %v, %v", mode, ok)
	}
	if _, ok := ParsePathMode("sideways"); ok {
		t.Error("unknown mode must be rejected")
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{sampleDiag()}, sampleFileSet(), PrettyOpts{Context: true, ShowNotes: true})
	out := buf.String()

	want := "3 |     type: counterr\n  |           ^\n"
	if !strings.Contains(out, want) {
		t.Errorf("Expected context block %q, got:\n%s", want, out)
	}
	if !strings.Contains(out, "    note: see the metrics schema") {
		t.Errorf("Expected note line, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Expected no ANSI escapes with Color=false")
	}
}

func TestPrettyWrapsBody(t *testing.T) {
	d := diag.NewWarning(diag.GenLeftover, "out/x.json", "", "one two three four five six seven eight nine ten")
	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, nil, PrettyOpts{Width: 20})
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
		if !strings.HasPrefix(line, "    ") {
			t.Errorf("line %q is not indented", line)
		}
	}
}

func TestShortAndCanonical(t *testing.T) {
	d := diag.NewError(diag.MrgDuplicate, "b.yaml", "browser.loads", "Duplicate metric name 'browser.loads' already defined in 'a.yaml'")
	var buf bytes.Buffer
	Short(&buf, []diag.Diagnostic{d}, false)
	if got := buf.String(); got != "error MRG4001 b.yaml browser.loads: Duplicate metric name 'browser.loads' already defined in 'a.yaml'\n" {
		t.Errorf("short = %q", got)
	}

	buf.Reset()
	Canonical(&buf, []diag.Diagnostic{d})
	if got := buf.String(); got != "b.yaml: browser.loads:\n    Duplicate metric name 'browser.loads' already defined in 'a.yaml'\n" {
		t.Errorf("canonical = %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	nits := []lint.Nit{{
		Check:    "CATEGORY_GENERIC",
		Code:     diag.LntCategoryGeneric,
		Severity: diag.SevError,
		Target:   "metrics",
		Message:  "Category 'metrics' is too generic.",
		Where:    model.Provenance{Path: "m.yaml", Line: 2, Col: 1},
	}}
	warn := diag.NewWarning(diag.GenInfo, "", "json", "Unknown option 'x' for format 'json'")

	var buf bytes.Buffer
	if err := JSON(&buf, []diag.Diagnostic{sampleDiag(), warn}, nits, sampleFileSet(), JSONOpts{PathMode: PathModeBasename, Max: 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Diagnostics) != 1 || out.Count != 2 || !out.Failed {
		t.Fatalf("unexpected output %+v", out)
	}
	got := out.Diagnostics[0]
	if got.Code != "SCH2003" || got.Path != "metrics.yaml" || got.Line != 3 || got.Notes != nil {
		t.Errorf("unexpected diagnostic %+v", got)
	}
	if out.Nits[0].Check != "CATEGORY_GENERIC" || out.Nits[0].Severity != "error" {
		t.Errorf("unexpected nit %+v", out.Nits[0])
	}
}

func TestNits(t *testing.T) {
	var buf bytes.Buffer
	Nits(&buf, nil, false)
	if got := buf.String(); got != glinterPass+"\n" {
		t.Errorf("clean report = %q", got)
	}

	buf.Reset()
	Nits(&buf, []lint.Nit{{Check: "BUG_NUMBER", Severity: diag.SevError, Target: "browser.loads", Message: "Use a full URL."}}, false)
	out := buf.String()
	for _, want := range []string{nitsHeader, "BUG_NUMBER: browser.loads: Use a full URL.", nitsFooter, "no_lint"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, glinterPass) {
		t.Error("error nits must not print the success line")
	}

	buf.Reset()
	Nits(&buf, []lint.Nit{{Check: "TYPE_IN_NAME", Severity: diag.SevWarning, Target: "a.b_counter", Message: "m"}}, false)
	if out := buf.String(); !strings.Contains(out, glinterPass) || strings.Contains(out, nitsFooter) {
		t.Errorf("warnings only:\n%s", out)
	}
}
