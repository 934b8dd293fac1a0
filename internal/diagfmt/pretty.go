package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"meterc/internal/diag"
	"meterc/internal/source"
)

type palette struct {
	path, err, warn, info, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.path, p.err, p.warn, p.info, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Ожидает отсортированный список. Для каждой диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <header>
//	    <message>
//
// затем строку исходника с ^ под колонкой (если Context) и заметки.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc := displayPath(d.Path, fs, opts.PathMode, opts.BaseDir)
		if !d.Pos.IsZero() {
			loc = fmt.Sprintf("%s:%d:%d", loc, d.Pos.Line, d.Pos.Col)
		}
		if loc == "" {
			loc = "meterc"
		}
		fmt.Fprintf(w, "%s: %s %s", pal.path.Sprint(loc), pal.severity(d.Severity).Sprint(d.Severity.String()), pal.code.Sprint(d.Code.ID()))
		if d.Header != "" {
			fmt.Fprintf(w, ": %s", d.Header)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, body(d.Message, opts.Width))

		if opts.Context && !d.Pos.IsZero() && fs != nil {
			if f, ok := fs.GetByPath(d.Path); ok {
				writeContext(w, f, d.Pos, pal)
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "    %s %s\n", pal.info.Sprint("note:"), n)
			}
		}
	}
}

func body(msg string, width int) string {
	if width > 4 {
		msg = wordwrap.String(msg, width-4)
	}
	return indent.String(msg, 4)
}

func writeContext(w io.Writer, f *source.File, pos source.LineCol, pal palette) {
	line := f.GetLine(pos.Line)
	if line == "" {
		return
	}
	num := fmt.Sprintf("%d", pos.Line)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, "%s %s %s\n", pal.gutter.Sprint(num), pal.gutter.Sprint("|"), line)

	// колонка в байтах; под многобайтовыми символами каретка должна учитывать ширину
	col := int(pos.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	offset := runewidth.StringWidth(strings.ReplaceAll(line[:col], "\t", "    "))
	fmt.Fprintf(w, "%s %s %s%s\n", pad, pal.gutter.Sprint("|"), strings.Repeat(" ", offset), pal.caret.Sprint("^"))
}

// Short writes the one-line-per-diagnostic form.
func Short(w io.Writer, diags []diag.Diagnostic, includeNotes bool) {
	if out := diag.FormatShortDiagnostics(diags, includeNotes); out != "" {
		fmt.Fprintln(w, out)
	}
}

// Canonical writes diagnostics in the `path: header:\n    body` form, one
// blank line between entries.
func Canonical(w io.Writer, diags []diag.Diagnostic) {
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, d.String())
	}
}
