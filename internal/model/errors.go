package model

import (
	"errors"
	"fmt"

	"meterc/internal/diag"
)

// Error is a recoverable construction failure of a single object.
type Error struct {
	Code diag.Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func errorf(code diag.Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf returns the diagnostic code carried by a construction error.
func CodeOf(err error) diag.Code {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	if fe, ok := diag.AsFatal(err); ok {
		return fe.Code
	}
	return diag.ObjInvalid
}
