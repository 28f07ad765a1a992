// Package session - the mutable editing state machine exposed to the UI
// layer and to persistence. It owns one immutable source raster and the
// derived preview/thumbnail buffers, and routes parameter changes through
// the debounced preview scheduler and the thumbnail pool.
package session

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/foxnet66/CloudAsset/compositor"
	"github.com/foxnet66/CloudAsset/config"
	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/images"
	"github.com/foxnet66/CloudAsset/preview"
	"github.com/foxnet66/CloudAsset/profiler"
	"github.com/foxnet66/CloudAsset/thumbnails"
)

// ErrClosed is returned by operations on a session that has been closed.
var ErrClosed = errors.New("session: closed")

// Session glues the transform engine, scheduler, thumbnail pool and
// compositor together for one image being edited.
//
// All parameter mutation and result publication run on a single event-loop
// goroutine, the session's UI-owning context; pixel work never runs there.
// Derived buffers (preview, thumbnails) are the only shared mutable state
// and are replaced whole-value under the mutex, never mutated field by
// field. The source raster is never mutated or replaced for the session's
// lifetime.
type Session struct {
	cfg config.Config

	source  *images.Raster // immutable full-resolution original
	working *images.Raster // bounded copy every live pass runs on

	loop      chan func()
	done      chan struct{}
	closeOnce sync.Once

	sched *preview.Scheduler
	pool  *thumbnails.Pool
	prof  *profiler.StageTimer

	mu               sync.RWMutex
	filter           filters.Kind
	adjust           filters.Adjustments
	geometry         compositor.Geometry
	preview          *images.Raster
	thumbs           map[filters.Kind]*images.Raster
	thumbAdjust      filters.Adjustments
	thumbsGenerated  bool
	thumbsGenerating bool
	processing       bool
	interactive      bool
	closed           bool

	onPreview    []func(*images.Raster)
	onThumbnail  []func(thumbnails.Result)
	onProcessing []func(bool)
}

// Option customizes a session at creation.
type Option func(*Session)

// WithProfiler attaches a stage timer that records decode, engine-pass,
// thumbnail-batch and commit durations.
func WithProfiler(st *profiler.StageTimer) Option {
	return func(s *Session) { s.prof = st }
}

// New creates an editing session from raw image bytes.
//
// Decode failure is fatal to session creation: no partial session is
// created and the error surfaces as "cannot open image". On success the
// source is bounded to the working edge and the identity preview is seeded;
// the thumbnail bank is generated lazily on first RefreshThumbnails.
//
// Arguments:
//   - raw: The captured or imported image bytes, orientation already
//     normalized by the acquisition collaborator.
//   - cfg: Pipeline configuration.
//   - opts: Optional customizations.
//
// Returns:
//   - *Session: The live session.
//   - error: The decode failure, wrapped.
func New(raw []byte, cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		loop:     make(chan func(), 64),
		done:     make(chan struct{}),
		geometry: compositor.DefaultGeometry(),
		thumbs:   make(map[filters.Kind]*images.Raster),
	}
	for _, opt := range opts {
		opt(s)
	}

	stopDecode := s.prof.Start("decode")
	source, err := images.Decode(raw)
	stopDecode()
	if err != nil {
		return nil, errors.Wrap(err, "session: cannot open image")
	}
	s.source = source
	s.working = images.DownscaleToBound(source, cfg.MaxWorkingEdge)
	// The identity preview: the working copy itself, available before any
	// engine pass has run.
	s.preview = s.working

	s.sched = preview.NewScheduler(
		s.transform,
		s.publishPreview,
		s.execute,
		preview.WithDebounce(cfg.Debounce()),
		preview.WithProcessingFunc(s.publishProcessing),
	)
	s.pool = thumbnails.NewPool(cfg.ThumbnailEdge, cfg.Workers)

	go s.run()
	return s, nil
}

// run is the session's UI-owning serial context.
func (s *Session) run() {
	for {
		select {
		case fn := <-s.loop:
			fn()
		case <-s.done:
			return
		}
	}
}

// execute schedules fn on the session's serial context. Calls after Close
// are dropped.
func (s *Session) execute(fn func()) {
	select {
	case s.loop <- fn:
	case <-s.done:
	}
}

// transform is the scheduler's background invocation: one engine pass over
// the working copy. Runs off the serial context.
func (s *Session) transform(p preview.Params) *images.Raster {
	defer s.prof.Start("preview_pass")()
	return filters.Apply(s.working, p.Filter, p.Adjust)
}

// liveParams snapshots the current filter intent.
func (s *Session) liveParams() preview.Params {
	return preview.Params{Filter: s.filter, Adjust: s.adjust}
}

// publishPreview receives a completed computation on the serial context. A
// result whose parameters no longer match the session's live parameters is
// discarded, never published; the scheduler has already restarted for the
// newer ones.
func (s *Session) publishPreview(p preview.Params, result *images.Raster) {
	if result == nil {
		return
	}
	s.mu.Lock()
	if s.closed || !p.Equal(s.liveParams()) {
		s.mu.Unlock()
		return
	}
	s.preview = result
	listeners := s.onPreview
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

// publishProcessing forwards the scheduler's processing flag on the serial
// context.
func (s *Session) publishProcessing(active bool) {
	s.mu.Lock()
	if s.closed || s.processing == active {
		s.mu.Unlock()
		return
	}
	s.processing = active
	listeners := s.onProcessing
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(active)
	}
}

// SelectFilter switches the discrete color-effect filter. Selection is not
// a drag gesture, so the recomputation fires without waiting out the
// debounce interval.
func (s *Session) SelectFilter(kind filters.Kind) {
	s.execute(func() {
		s.mu.Lock()
		if s.closed || !kind.Valid() || s.filter == kind {
			s.mu.Unlock()
			return
		}
		s.filter = kind
		params := s.liveParams()
		s.mu.Unlock()

		s.sched.Submit(params, false)
		s.sched.Release()
	})
}

// SetBrightness updates the brightness knob. interactive should be true
// while the slider is still being dragged.
func (s *Session) SetBrightness(value float64, interactive bool) {
	s.setAdjust(func(a *filters.Adjustments) {
		a.Brightness = filters.SnapAdjust(value)
	}, interactive)
}

// SetContrast updates the contrast knob. interactive should be true while
// the slider is still being dragged.
func (s *Session) SetContrast(value float64, interactive bool) {
	s.setAdjust(func(a *filters.Adjustments) {
		a.Contrast = filters.SnapAdjust(value)
	}, interactive)
}

func (s *Session) setAdjust(mutate func(*filters.Adjustments), interactive bool) {
	s.execute(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		mutate(&s.adjust)
		s.interactive = interactive
		params := s.liveParams()
		s.mu.Unlock()

		s.sched.Submit(params, interactive)
	})
}

// SetInteractive marks the start or end of a drag gesture without moving a
// knob. Ending a gesture is equivalent to EndInteraction.
func (s *Session) SetInteractive(active bool) {
	if !active {
		s.EndInteraction()
		return
	}
	s.execute(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.closed {
			s.interactive = true
		}
	})
}

// EndInteraction marks the end of a slider drag: the pending preview
// computation fires immediately for the most recent values.
func (s *Session) EndInteraction() {
	s.execute(func() {
		s.mu.Lock()
		s.interactive = false
		s.mu.Unlock()
		s.sched.Release()
	})
}

// SetGeometry replaces the scale/rotation/pan transform. Geometry never
// triggers a preview recomputation; it is folded in once at commit.
func (s *Session) SetGeometry(g compositor.Geometry) {
	s.execute(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.geometry = g.Normalize()
	})
}

// RefreshThumbnails regenerates the filter bank when the current thumbnails
// were built under different adjustment values, or have never been built.
// Thumbnails are not assumed valid beyond the adjustment context they were
// generated under. Calling it while a matching generation is in flight is a
// no-op.
func (s *Session) RefreshThumbnails() {
	s.execute(s.ensureThumbnails)
}

func (s *Session) ensureThumbnails() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	adjust := s.adjust
	fresh := s.thumbsGenerated && s.thumbAdjust.Equal(adjust)
	if fresh || s.thumbsGenerating {
		s.mu.Unlock()
		return
	}

	stream, started := s.pool.Generate(s.working, adjust)
	if !started {
		s.mu.Unlock()
		return
	}
	s.thumbsGenerating = true
	s.thumbAdjust = adjust
	s.mu.Unlock()

	go func() {
		stopBatch := s.prof.Start("thumbnail_batch")
		defer stopBatch()
		for result := range stream {
			r := result
			s.execute(func() { s.applyThumbnail(r) })
		}
		s.execute(func() {
			s.mu.Lock()
			s.thumbsGenerating = false
			s.thumbsGenerated = true
			adjustNow := s.adjust
			built := s.thumbAdjust
			s.mu.Unlock()
			// Adjustments may have moved while the batch ran; regenerate so
			// the bank matches what the user now sees.
			if !built.Equal(adjustNow) {
				s.ensureThumbnails()
			}
		})
	}()
}

// applyThumbnail installs one streamed thumbnail on the serial context. A
// placeholder never overwrites a real thumbnail already present for its
// kind within the same adjustment context.
func (s *Session) applyThumbnail(result thumbnails.Result) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if result.Placeholder {
		if _, exists := s.thumbs[result.Kind]; exists && result.Adjust.Equal(s.thumbAdjust) {
			s.mu.Unlock()
			return
		}
	}
	s.thumbs[result.Kind] = result.Image
	listeners := s.onThumbnail
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
}

// Flush blocks until every parameter change enqueued before the call has
// been applied on the serial context. It does not wait for background
// computations; previews still arrive through OnPreview.
func (s *Session) Flush() {
	applied := make(chan struct{})
	s.execute(func() { close(applied) })
	select {
	case <-applied:
	case <-s.done:
	}
}

// Commit produces the final full-resolution buffer for the catalog record:
// the geometric transform folded into one affine draw of the original
// source, then one last engine pass with the live parameters. The session
// is not torn down on failure, allowing retry.
//
// Returns:
//   - *images.Raster: The committed buffer.
//   - error: The commit failure.
func (s *Session) Commit() (*images.Raster, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	source := s.source
	geometry := s.geometry
	kind := s.filter
	adjust := s.adjust
	s.mu.RUnlock()

	defer s.prof.Start("commit")()
	return compositor.Commit(source, geometry, kind, adjust)
}

// CommitEncoded commits and serializes in the session's source format.
func (s *Session) CommitEncoded() ([]byte, error) {
	committed, err := s.Commit()
	if err != nil {
		return nil, err
	}
	return images.Encode(committed, committed.Format(), s.cfg.JPEGQuality)
}

// Close tears the session down: the scheduler stops, the event loop exits
// and every derived buffer is released. The committed output, if any, was
// already handed to the caller; on cancel there is none.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.preview = nil
		s.thumbs = nil
		s.onPreview = nil
		s.onThumbnail = nil
		s.onProcessing = nil
		s.mu.Unlock()

		s.sched.Close()
		close(s.done)
	})
}

// OnPreview registers a listener for published previews. Listeners run on
// the session's serial context.
func (s *Session) OnPreview(fn func(*images.Raster)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.onPreview = append(s.onPreview, fn)
	}
}

// OnThumbnail registers a listener for streamed thumbnails, placeholders
// included.
func (s *Session) OnThumbnail(fn func(thumbnails.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.onThumbnail = append(s.onThumbnail, fn)
	}
}

// OnProcessing registers a listener for the processing flag. The flag is
// distinct from the interactive flag: it never turns on mid-drag.
func (s *Session) OnProcessing(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.onProcessing = append(s.onProcessing, fn)
	}
}

// Preview returns the latest published preview.
func (s *Session) Preview() *images.Raster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview
}

// Thumbnail returns the current thumbnail for a filter kind, which may be a
// placeholder, and whether one exists.
func (s *Session) Thumbnail(kind filters.Kind) (*images.Raster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thumb, ok := s.thumbs[kind]
	return thumb, ok
}

// Thumbnails returns a copy of the thumbnail map.
func (s *Session) Thumbnails() map[filters.Kind]*images.Raster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[filters.Kind]*images.Raster, len(s.thumbs))
	for kind, thumb := range s.thumbs {
		out[kind] = thumb
	}
	return out
}

// Processing reports whether a visible processing indicator should be shown.
func (s *Session) Processing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

// Filter returns the currently selected filter kind.
func (s *Session) Filter() filters.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Adjustments returns the current brightness/contrast values.
func (s *Session) Adjustments() filters.Adjustments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adjust
}

// Geometry returns the current geometric transform.
func (s *Session) Geometry() compositor.Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometry
}

// Source returns the immutable full-resolution original.
func (s *Session) Source() *images.Raster { return s.source }

// Working returns the bounded working copy the live passes run on.
func (s *Session) Working() *images.Raster { return s.working }
