package diag

import (
	"errors"
	"fmt"
)

// FatalError stops the whole run: unresolvable schema identifiers, dangling
// denominator references, missing required input files.
type FatalError struct {
	Code Code
	Path string
	Msg  string
	Err  error
}

func (e *FatalError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code.ID(), e.Path, e.Msg)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Diagnostic converts the fatal condition into a printable diagnostic.
func (e *FatalError) Diagnostic() Diagnostic {
	return NewError(e.Code, e.Path, "", e.Msg)
}

// Fatalf builds a FatalError.
func Fatalf(code Code, path, format string, args ...any) *FatalError {
	return &FatalError{Code: code, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// AsFatal reports whether err carries a FatalError.
func AsFatal(err error) (*FatalError, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
