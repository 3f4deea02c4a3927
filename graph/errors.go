package graph

import "fmt"

// ErrorKind classifies a graph-level failure the way gpu.Error classifies GPU-context failures, so callers
// can branch on errors.As without parsing strings.
type ErrorKind int

const (
	KindBuild ErrorKind = iota
	KindTransient
	KindShader
)

type Error struct {
	Kind    ErrorKind
	Context string
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph: %s", e.Context)
}

func buildErrorf(format string, args ...any) error {
	return &Error{Kind: KindBuild, Context: fmt.Sprintf(format, args...)}
}
