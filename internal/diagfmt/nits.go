package diagfmt

import (
	"fmt"
	"io"

	"meterc/internal/lint"
)

const (
	nitsHeader  = "Sorry, Glean found some glinter nits:"
	nitsFooter  = "Please fix the above nits to continue."
	glinterPass = "✨ Your metrics are Glean! ✨"
)

// Nits prints the glinter report. An empty or warning-only list ends with
// the success line; error nits end with the request to fix them and the
// suppression hint.
func Nits(w io.Writer, nits []lint.Nit, colored bool) {
	pal := newPalette(colored)
	if len(nits) > 0 {
		fmt.Fprintln(w, nitsHeader)
		for _, n := range nits {
			fmt.Fprintf(w, "%s: %s: %s\n", pal.severity(n.Severity).Sprint(n.Check), n.Target, n.Message)
		}
		fmt.Fprintln(w)
	}
	if lint.HasErrors(nits) {
		fmt.Fprintln(w, nitsFooter)
		fmt.Fprintln(w, lint.Hint)
		return
	}
	if len(nits) > 0 {
		fmt.Fprintln(w, lint.Hint)
	}
	fmt.Fprintln(w, pal.caret.Sprint(glinterPass))
}
