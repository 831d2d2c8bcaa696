// Package progress defines the ProgressSink capability (spec.md §6)
// and a concrete terminal implementation, grounded on
// ivoronin/dupedog's internal/progress.Bar: a throttled spinner/bar
// that is a no-op when disabled so callers never branch on whether
// progress reporting is active.
package progress

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Sink is the capability the walker and renderer report progress
// through. It is mutex-guarded internally (spec.md §5) so it may be
// updated from any worker goroutine.
type Sink interface {
	NoteDiscovered(delta int64)
	NotePhase(phase string)
	Terminate()
}

// Terminal is the concrete Sink backing the CLI: a spinner while the
// walk is in flight, whose description NotePhase replaces with the
// given phase name (the pipeline itself does not call NotePhase). Its
// discovered-count is an atomic.Int64 so concurrent
// walker goroutines can bump it without a hand-rolled mutex, per
// spec.md §5's "progress sink is mutex-guarded and may be updated from
// any thread".
type Terminal struct {
	bar     *progressbar.ProgressBar
	count   atomic.Int64
	enabled bool
}

// NewTerminal builds a Terminal sink. When enabled is false, every
// method is a no-op.
func NewTerminal(enabled bool) *Terminal {
	t := &Terminal{enabled: enabled}
	if !enabled {
		return t
	}
	t.bar = progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
	)
	return t
}

func (t *Terminal) NoteDiscovered(delta int64) {
	if !t.enabled {
		return
	}
	n := t.count.Add(delta)
	_ = t.bar.Set64(n)
}

func (t *Terminal) NotePhase(phase string) {
	if !t.enabled {
		return
	}
	t.bar.Describe(phase)
}

func (t *Terminal) Terminate() {
	if !t.enabled {
		return
	}
	_ = t.bar.Finish()
	fmt.Fprintln(os.Stderr, "done")
}

// Noop is a Sink that discards every call, used by library callers
// that don't want a terminal dependency (tests, non-interactive runs).
type Noop struct{}

func (Noop) NoteDiscovered(int64) {}
func (Noop) NotePhase(string)     {}
func (Noop) Terminate()           {}
