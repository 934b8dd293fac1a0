package diag

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, path, header and message.
type DedupReporter struct {
	next Reporter
	seen map[bagKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[bagKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := bagKey{code: d.Code, sev: d.Severity, path: d.Path, header: d.Header, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
