//go:build dev

// Package trace records runtime traces of argot in development builds.
//
// Usage:
//
//	go build -tags dev ./cmd/argot
//	ARGOT_TRACE=trace.out argot complete --line 'deploy --re'
//	go tool trace trace.out
package trace

import (
	"context"
	"fmt"
	"os"
	"runtime/trace"
	"sync"
)

// EnvVar names the file a trace is written to
const EnvVar = "ARGOT_TRACE"

var (
	traceFile   *os.File
	traceMu     sync.Mutex
	traceActive bool
)

// Init starts tracing when ARGOT_TRACE is set to a file path.
// Returns a cleanup function that should be deferred.
func Init() func() {
	tracePath := os.Getenv(EnvVar)
	if tracePath == "" {
		return func() {}
	}

	traceMu.Lock()
	defer traceMu.Unlock()

	var err error
	traceFile, err = os.Create(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "argot: failed to create trace file %s: %v\n", tracePath, err)
		return func() {}
	}

	if err := trace.Start(traceFile); err != nil {
		fmt.Fprintf(os.Stderr, "argot: failed to start trace: %v\n", err)
		traceFile.Close()
		traceFile = nil
		return func() {}
	}

	traceActive = true

	return func() {
		traceMu.Lock()
		defer traceMu.Unlock()

		if traceActive {
			trace.Stop()
			traceActive = false
		}
		if traceFile != nil {
			traceFile.Close()
			traceFile = nil
		}
	}
}

// Region starts a trace region and returns the function that ends it
func Region(ctx context.Context, regionType string) func() {
	if !traceActive {
		return func() {}
	}
	return trace.StartRegion(ctx, regionType).End
}

// Log attaches a message to the trace
func Log(ctx context.Context, category, message string) {
	if traceActive {
		trace.Log(ctx, category, message)
	}
}

// WithRegion executes a function within a trace region.
func WithRegion(ctx context.Context, regionType string, f func()) {
	if traceActive {
		trace.WithRegion(ctx, regionType, f)
	} else {
		f()
	}
}

// IsEnabled returns true if tracing is enabled.
func IsEnabled() bool {
	return traceActive
}
