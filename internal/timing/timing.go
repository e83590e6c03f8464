// Package timing measures the stages of a single argot invocation.
package timing

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the time spent between two marks
type Stage struct {
	Label    string
	Duration time.Duration
}

// Timer splits elapsed time into labeled stages. A nil *Timer is valid and
// records nothing, so callers never need to check whether timing is on.
type Timer struct {
	start  time.Time
	last   time.Time
	stages []Stage
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, last: now}
}

// Mark closes the current stage under label and returns its duration
func (t *Timer) Mark(label string) time.Duration {
	if t == nil {
		return 0
	}
	now := time.Now()
	d := now.Sub(t.last)
	t.last = now
	t.stages = append(t.stages, Stage{Label: label, Duration: d})
	return d
}

// Measure runs fn as its own stage
func (t *Timer) Measure(label string, fn func()) {
	if t != nil {
		t.last = time.Now()
	}
	fn()
	t.Mark(label)
}

// Elapsed returns total elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.start)
}

// Get returns the duration of the first stage with label
func (t *Timer) Get(label string) (time.Duration, bool) {
	if t == nil {
		return 0, false
	}
	for _, s := range t.stages {
		if s.Label == label {
			return s.Duration, true
		}
	}
	return 0, false
}

// Stages returns the recorded stages in order
func (t *Timer) Stages() []Stage {
	if t == nil {
		return nil
	}
	return append([]Stage(nil), t.stages...)
}

// Summary returns a formatted summary of all timings
func (t *Timer) Summary() string {
	var b strings.Builder
	b.WriteString("Total: " + millis(t.Elapsed()))

	if stages := t.Stages(); len(stages) > 0 {
		b.WriteString(" (")
		for i, s := range stages {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.Label + ": " + millis(s.Duration))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Reset resets the timer
func (t *Timer) Reset() {
	if t == nil {
		return
	}
	now := time.Now()
	t.start = now
	t.last = now
	t.stages = nil
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000.0)
}
