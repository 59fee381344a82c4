// Package async launches named goroutines so that scan worker goroutines are
// identifiable in pprof dumps and stack traces.
package async

import (
	"context"
	"runtime/pprof"
)

// Go runs fn on a new goroutine labeled with the given name.
func Go(name string, fn func()) {
	labels := pprof.Labels("task", name)
	go pprof.Do(context.Background(), labels, func(context.Context) { fn() })
}
