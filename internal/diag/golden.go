package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Header   string
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files: paths are reduced to base names so
// fixtures do not depend on the checkout location.
func FormatGoldenDiagnostics(diags []Diagnostic, includeNotes bool) string {
	return formatDiagnostics(diags, includeNotes, true)
}

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation intended for CLI short output.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	return formatDiagnostics(diags, includeNotes, false)
}

func formatDiagnostics(diags []Diagnostic, includeNotes, baseNames bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = appendDiagnostic(rendered, d, includeNotes, baseNames)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if di.Header != dj.Header {
			return di.Header < dj.Header
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		loc := d.Path
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", d.Path, d.Line, d.Column)
		}
		fmt.Fprintf(&b, "%s %s %s", d.Severity, d.Code, loc)
		if d.Header != "" {
			fmt.Fprintf(&b, " %s:", d.Header)
		}
		fmt.Fprintf(&b, " %s", d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d Diagnostic, includeNotes, baseNames bool) []goldenDiagnostic {
	path := normalizePath(d.Path)
	if baseNames && path != "" {
		path = filepath.Base(path)
	}
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Path:     path,
		Line:     d.Pos.Line,
		Column:   d.Pos.Col,
		Header:   d.Header,
		Message:  sanitizeMessage(d.Message),
	})
	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     path,
				Line:     d.Pos.Line,
				Column:   d.Pos.Col,
				Header:   d.Header,
				Message:  sanitizeMessage(note),
			})
		}
	}
	return out
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.Join(strings.Fields(msg), " ")
	return strings.TrimSpace(msg)
}
