package qtree

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	ErrEmptyRegion     = errors.New("complete_region requires q1 < q2 or an included endpoint")
	ErrNotAlmostSorted = errors.New("balance_subtree precondition violated: tree is not almost-sorted")
)

// invariant panics with a file/line-tagged message when cond is false. An
// invariant violation inside the core indicates a logic bug, not a
// recoverable condition, so it is never returned as an error; forest is the
// one place that recovers it into a fail-stop abort.
func invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	panic(fmt.Sprintf("qtree: invariant violation at %s:%d: %s", file, line, fmt.Sprintf(format, args...)))
}
