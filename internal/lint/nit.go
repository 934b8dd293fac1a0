// Package lint runs the configurable style checks over a merged tree.
//
// Checks come in three scopes: category (a whole metric category), metric
// and ping. A check listed in an object's no_lint, or in the no_lint of the
// file it was defined in, is skipped for that object; category checks are
// skipped when any metric of the category suppresses them. An object's own
// no_lint entry that suppresses nothing produces SUPERFLUOUS_NO_LINT.
package lint

import (
	"fmt"

	"meterc/internal/diag"
	"meterc/internal/model"
)

// Nit is one lint finding.
type Nit struct {
	Check    string
	Code     diag.Code
	Severity diag.Severity
	Target   string // категория, идентификатор метрики или имя пинга
	Message  string
	Where    model.Provenance
}

// String renders the `CHECK: target: message` line.
func (n Nit) String() string {
	return fmt.Sprintf("%s: %s: %s", n.Check, n.Target, n.Message)
}

// Diagnostic converts the nit for the shared diagnostics channel.
func (n Nit) Diagnostic() diag.Diagnostic {
	d := diag.New(n.Severity, n.Code, n.Where.Path, n.Target, n.Check+": "+n.Message)
	if n.Where.Line > 0 {
		d.Pos.Line = uint32(n.Where.Line) // #nosec G115
		d.Pos.Col = uint32(n.Where.Col)   // #nosec G115
	}
	return d
}

// HasErrors reports whether any nit has error severity.
func HasErrors(nits []Nit) bool {
	for _, n := range nits {
		if n.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Hint explains how to silence checks; printed after a non-empty nit list.
const Hint = "To disable a check, add a `no_lint` parameter with a list of check names to disable.\n" +
	"This parameter can appear with each individual metric, or at the top-level to affect the entire file."
