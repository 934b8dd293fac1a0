// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced while
//     loading, validating, merging, transforming and linting definition files.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Path – the input file (or in-memory label) the finding belongs to.
//   - Header – optional failing field path or object name.
//   - Message – body; schema violations carry a doc snippet here.
//   - Notes – optional extra context lines.
//
// The canonical rendering is
//
//	path: header:
//	    body
//
// Recoverable problems travel as Diagnostic values. Conditions that must stop
// the run (unknown schema id, dangling denominator, missing input file) are
// returned as *FatalError.
//
// # Emitting diagnostics
//
// Phases use a Reporter. ReportError / ReportWarning build a ReportBuilder that
// can carry a header and position before Emit. BagReporter aggregates into a
// Bag, which supports sorting, deduplication and filtering.
//
// Rendering lives in internal/diagfmt.
package diag
