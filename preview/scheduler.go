// Package preview - coalesces high-frequency parameter changes into a
// bounded rate of transform-engine invocations whose results are safe to
// display.
package preview

import (
	"sync"
	"time"

	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/images"
)

// DefaultDebounce is the quiet interval after the last Submit before a
// computation fires.
const DefaultDebounce = 180 * time.Millisecond

// Params is one complete description of the user's live filter intent.
type Params struct {
	Filter filters.Kind
	Adjust filters.Adjustments
}

// Equal reports whether two parameter sets describe the same output.
func (p Params) Equal(other Params) bool {
	return p.Filter == other.Filter && p.Adjust.Equal(other.Adjust)
}

// State is the scheduler's position in its lifecycle.
type State int

const (
	// StateIdle means no computation is pending or running.
	StateIdle State = iota
	// StatePending means the debounce timer is armed.
	StatePending
	// StateComputing means a transform invocation is in flight.
	StateComputing
)

// Transform runs the engine for one parameter set. Invoked off the UI
// context; must be safe to call concurrently with nothing (the scheduler
// guarantees at most one in-flight call).
type Transform func(Params) *images.Raster

// Publish delivers a computed preview. Always invoked through the Executor.
type Publish func(Params, *images.Raster)

// Executor runs a function on the UI-owning serial context. All published
// results and processing-flag changes are delivered through it; computation
// never runs on it.
type Executor func(fn func())

// Scheduler turns a stream of Submit calls into debounced, superseding
// transform invocations.
//
// Lifecycle: Idle -> Pending (timer armed) -> Computing -> Idle (published)
// or back to Computing immediately when the in-flight result was superseded.
// Terminal only via Close.
type Scheduler struct {
	debounce  time.Duration
	transform Transform
	publish   Publish
	exec      Executor

	mu           sync.Mutex
	state        State
	timer        *time.Timer
	latest       Params
	generation   uint64
	interactive  bool
	processing   bool
	onProcessing func(bool)
	closed       bool
}

// Option tunes scheduler construction.
type Option func(*Scheduler)

// WithDebounce overrides the quiet interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithProcessingFunc registers a listener for the processing flag. The flag
// is distinct from the caller's interactive flag: it stays false during an
// active drag even while computation is pending, avoiding indicator flicker
// at 60fps input rates.
func WithProcessingFunc(fn func(bool)) Option {
	return func(s *Scheduler) { s.onProcessing = fn }
}

// NewScheduler builds a scheduler around a transform invocation, a publish
// sink and the UI-owning executor.
func NewScheduler(transform Transform, publish Publish, exec Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		debounce:  DefaultDebounce,
		transform: transform,
		publish:   publish,
		exec:      exec,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records a new parameter set from the UI. Rapid calls replace the
// pending invocation, never queue behind it; a call arriving while a
// computation is in flight supersedes that computation's result.
//
// Arguments:
//   - params: The most recent filter/adjustment intent.
//   - interactive: True while the user is actively dragging a control.
func (s *Scheduler) Submit(params Params, interactive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.latest = params
	s.generation++
	s.interactive = interactive

	switch s.state {
	case StateIdle:
		s.state = StatePending
		s.armTimerLocked()
	case StatePending:
		s.armTimerLocked()
	case StateComputing:
		// The generation bump is enough; the in-flight result will be
		// discarded on arrival and a fresh run scheduled immediately.
	}
	s.updateProcessingLocked()
}

// Release marks the end of an interactive gesture. A pending invocation
// fires immediately instead of waiting out the quiet interval.
func (s *Scheduler) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.interactive = false
	if s.state == StatePending {
		s.stopTimerLocked()
		s.startComputationLocked()
	}
	s.updateProcessingLocked()
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Processing reports whether a visible processing indicator should be shown.
func (s *Scheduler) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Close stops the timer and prevents further submissions. In-flight work is
// allowed to finish; its result is dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.state = StateIdle
}

func (s *Scheduler) armTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.onQuiet)
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// onQuiet fires when a burst of submits has quiesced.
func (s *Scheduler) onQuiet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StatePending {
		return
	}
	s.startComputationLocked()
	s.updateProcessingLocked()
}

// startComputationLocked launches the background worker for the latest
// params. Exactly one worker runs at a time; supersession is detected by
// comparing generations when its result arrives.
func (s *Scheduler) startComputationLocked() {
	s.state = StateComputing
	params := s.latest
	generation := s.generation

	go func() {
		for {
			result := s.transform(params)

			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			if generation != s.generation {
				// Superseded mid-flight: discard silently and recompute
				// immediately for the newest params, no debounce.
				params = s.latest
				generation = s.generation
				s.mu.Unlock()
				continue
			}

			s.state = StateIdle
			s.updateProcessingLocked()
			publish := s.publish
			s.mu.Unlock()

			s.exec(func() {
				publish(params, result)
			})
			return
		}
	}()
}

// updateProcessingLocked recomputes the visible processing flag and notifies
// the listener on the UI context when it changes.
func (s *Scheduler) updateProcessingLocked() {
	next := s.state != StateIdle && !s.interactive
	if next == s.processing {
		return
	}
	s.processing = next
	if s.onProcessing != nil {
		fn := s.onProcessing
		s.exec(func() { fn(next) })
	}
}
