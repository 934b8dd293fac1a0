package diag

import (
	"strings"

	"meterc/internal/source"
)

// Diagnostic is a single finding attached to an input document.
// Path is the file path (or label of an in-memory document), Header names
// the failing field or object, Message is the body.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Path     string
	Pos      source.LineCol
	Header   string
	Message  string
	Notes    []string
}

// String renders the canonical textual form:
//
//	path: header:
//	    body
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Path)
	if d.Header != "" {
		b.WriteString(": ")
		b.WriteString(d.Header)
	}
	b.WriteString(":\n")
	b.WriteString(Indent(d.Message, "    "))
	for _, n := range d.Notes {
		b.WriteByte('\n')
		b.WriteString(Indent(n, "    "))
	}
	return b.String()
}

// Indent prefixes every non-empty line of s.
func Indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
