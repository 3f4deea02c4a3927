package gpu

import (
	"log"
	"os"
)

// gpuLog wraps the stdlib logger with a fixed prefix, the smallest step up from the teacher's bare
// fmt.Println that still gives every message a timestamp and a subsystem tag — no third-party structured
// logger exists anywhere in the corpus (see DESIGN.md / SPEC_FULL.md AMBIENT STACK).
var gpuLog = log.New(os.Stderr, "[gpu] ", log.LstdFlags)

func logf(format string, args ...any) {
	gpuLog.Printf(format, args...)
}
