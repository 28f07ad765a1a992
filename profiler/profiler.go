// Package profiler tracks wall-clock timings of the pipeline stages: decode,
// downscale, engine passes, thumbnail batches and commit.
package profiler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// defaultMaxSamples bounds the per-stage sample window.
const defaultMaxSamples = 600

// TimeTracker tracks timing statistics for one pipeline stage.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// StageTimer records operation timings across the stages of one pipeline.
// It is safe for concurrent use; recording from the preview computation
// goroutine and the thumbnail workers at once is the normal case.
type StageTimer struct {
	mu         sync.RWMutex
	maxSamples int
	stages     map[string]*TimeTracker
}

// NewStageTimer creates an empty stage timer.
func NewStageTimer() *StageTimer {
	return &StageTimer{
		maxSamples: defaultMaxSamples,
		stages:     make(map[string]*TimeTracker),
	}
}

// Start begins timing a stage.
//
// Arguments:
//   - name: The stage name, e.g. "preview_pass" or "commit".
//
// Returns:
//   - func(): A function to call when the stage completes.
func (st *StageTimer) Start(name string) func() {
	if st == nil {
		return func() {}
	}
	begin := time.Now()
	return func() {
		st.record(name, time.Since(begin))
	}
}

// record folds one completed duration into the stage's statistics.
func (st *StageTimer) record(name string, duration time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()

	tracker, exists := st.stages[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		st.stages[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > st.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Count returns how many completions a stage has recorded.
func (st *StageTimer) Count(name string) int64 {
	if st == nil {
		return 0
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	tracker, exists := st.stages[name]
	if !exists {
		return 0
	}
	return tracker.count
}

// Report renders the per-stage statistics, one line per stage sorted by
// name.
func (st *StageTimer) Report() string {
	if st == nil {
		return ""
	}
	st.mu.RLock()
	defer st.mu.RUnlock()

	names := make([]string, 0, len(st.stages))
	for name := range st.stages {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		tracker := st.stages[name]
		if len(tracker.durations) == 0 {
			continue
		}
		avg := tracker.totalTime / time.Duration(len(tracker.durations))
		fmt.Fprintf(&b, "%s: avg=%v min=%v max=%v count=%d\n",
			name, avg.Truncate(time.Microsecond),
			tracker.minTime.Truncate(time.Microsecond),
			tracker.maxTime.Truncate(time.Microsecond),
			tracker.count)
	}
	return b.String()
}
