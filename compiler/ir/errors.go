package ir

import (
	"fmt"

	"tlog.app/go/loc"
)

type (
	// InternalError is an internal consistency violation.
	// It aborts the compilation and points at a bug, not at user input.
	InternalError struct {
		Msg string
		PC  loc.PC
	}
)

func Internal(format string, args ...any) error {
	return InternalError{
		Msg: fmt.Sprintf(format, args...),
		PC:  loc.Caller(1),
	}
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s (at %v)", e.Msg, e.PC)
}
