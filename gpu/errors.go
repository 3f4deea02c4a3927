package gpu

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindFatalInit ErrorKind = iota
	KindResourceCreate
	KindTransient
	KindShader
)

// Error is the gpu package's error type: every fallible operation that isn't a one-line fmt.Errorf wrap
// returns one of these so callers can branch with errors.As on Kind, matching how the teacher's own code
// always carries enough context in the error string to diagnose a failure without a debugger attached.
type Error struct {
	Kind    ErrorKind
	Context string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gpu: %s", e.Context)
}

func errf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// IsTransient reports whether err represents a transient condition (e.g. VK_ERROR_OUT_OF_DATE_KHR) the
// frame scheduler should recover from by rebuilding the swapchain rather than propagating as fatal.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindTransient
	}
	return false
}
