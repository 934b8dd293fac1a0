package diagfmt

import (
	"io"

	"github.com/goccy/go-json"

	"meterc/internal/diag"
	"meterc/internal/lint"
	"meterc/internal/source"
)

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Path     string   `json:"path,omitempty"`
	Line     uint32   `json:"line,omitempty"`
	Col      uint32   `json:"col,omitempty"`
	Header   string   `json:"header,omitempty"`
	Message  string   `json:"message"`
	Notes    []string `json:"notes,omitempty"`
}

// NitJSON is a lint finding.
type NitJSON struct {
	Check    string `json:"check"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Target   string `json:"target"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Col      int    `json:"col,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Nits        []NitJSON        `json:"nits,omitempty"`
	Count       int              `json:"count"`
	Failed      bool             `json:"failed"`
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Failed is computed over everything passed in, not only the emitted slice.
func BuildDiagnosticsOutput(diags []diag.Diagnostic, nits []lint.Nit, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(diags)),
		Failed:      lint.HasErrors(nits),
	}
	for _, d := range diags {
		if d.Severity >= diag.SevError {
			out.Failed = true
		}
	}

	limit := len(diags)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	for _, d := range diags[:limit] {
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Path:     displayPath(d.Path, fs, opts.PathMode, opts.BaseDir),
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Header:   d.Header,
			Message:  d.Message,
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = append([]string(nil), d.Notes...)
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	for _, n := range nits {
		out.Nits = append(out.Nits, NitJSON{
			Check:    n.Check,
			Severity: n.Severity.Label(),
			Code:     n.Code.ID(),
			Target:   n.Target,
			Message:  n.Message,
			Path:     displayPath(n.Where.Path, fs, opts.PathMode, opts.BaseDir),
			Line:     n.Where.Line,
			Col:      n.Where.Col,
		})
	}
	out.Count = len(out.Diagnostics) + len(out.Nits)
	return out
}

// JSON форматирует диагностики и замечания линтера в JSON.
func JSON(w io.Writer, diags []diag.Diagnostic, nits []lint.Nit, fs *source.FileSet, opts JSONOpts) error {
	data, err := json.MarshalIndent(BuildDiagnosticsOutput(diags, nits, fs, opts), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
