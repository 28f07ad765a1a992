// Package thumbnails - produces one small filtered preview per filter kind
// so the user can compare filters side by side without blocking the editor.
package thumbnails

import (
	"runtime"
	"sync"

	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/images"
)

// DefaultEdge is the longest edge of a generated thumbnail.
const DefaultEdge = 160

// Result is one published thumbnail. Placeholders carry no engine output and
// always precede the real thumbnail for their kind.
type Result struct {
	Kind        filters.Kind
	Image       *images.Raster
	Placeholder bool
	// Adjust records the adjustment context the thumbnail was built under.
	// Thumbnails are not assumed valid beyond it; the owning session
	// regenerates when its live adjustments differ.
	Adjust filters.Adjustments
}

// placeholderTints are the flat tile colors standing in for each filter
// before its real thumbnail arrives. Indexed by kind, matching the fixed
// display order.
var placeholderTints = map[filters.Kind][3]uint8{
	filters.KindIdentity:   {128, 128, 128},
	filters.KindMonochrome: {96, 96, 96},
	filters.KindSepia:      {148, 122, 92},
	filters.KindVibrance:   {150, 100, 150},
	filters.KindCool:       {100, 120, 160},
	filters.KindWarm:       {170, 130, 90},
}

// Placeholder synthesizes the cheap stand-in tile for a filter kind without
// running the transform engine.
func Placeholder(kind filters.Kind, edge int) *images.Raster {
	if edge <= 0 {
		edge = DefaultEdge
	}
	tint, ok := placeholderTints[kind]
	if !ok {
		tint = [3]uint8{128, 128, 128}
	}
	return images.Flat(edge, edge, tint[0], tint[1], tint[2], 255)
}

type generationKey struct {
	source *images.Raster
	adjust filters.Adjustments
}

// Pool fans per-filter thumbnail work out over a bounded set of workers and
// streams each result back as it completes.
type Pool struct {
	edge    int
	workers int

	mu       sync.Mutex
	inflight map[generationKey]struct{}
}

// NewPool builds a pool generating thumbnails with the given longest edge
// across the given number of workers. Non-positive arguments fall back to
// DefaultEdge and NumCPU.
func NewPool(edge, workers int) *Pool {
	if edge <= 0 {
		edge = DefaultEdge
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(filters.Kinds()) {
		workers = len(filters.Kinds())
	}
	return &Pool{
		edge:     edge,
		workers:  workers,
		inflight: make(map[generationKey]struct{}),
	}
}

// Generate streams one placeholder and one real thumbnail per filter kind,
// holding the given adjustment values fixed.
//
// Placeholders for every kind are already buffered on the returned channel
// when Generate returns, so the UI never shows empty cells. The source is
// downscaled to thumbnail resolution once, before the per-filter loop; real
// thumbnails then arrive one at a time in completion order and the channel
// closes after the last.
//
// Generation for a given source+adjustment pair runs at most once
// concurrently: a second call with identical inputs while one is in flight
// returns (nil, false) and triggers no work.
//
// Arguments:
//   - source: The session's working raster.
//   - adjust: The adjustment context to bake into every thumbnail.
//
// Returns:
//   - <-chan Result: The result stream, closed after all kinds complete.
//   - bool: False when an identical generation is already in flight.
func (p *Pool) Generate(source *images.Raster, adjust filters.Adjustments) (<-chan Result, bool) {
	if source == nil {
		return nil, false
	}
	adjust = adjust.Normalize()

	key := generationKey{source: source, adjust: adjust}
	p.mu.Lock()
	if _, running := p.inflight[key]; running {
		p.mu.Unlock()
		return nil, false
	}
	p.inflight[key] = struct{}{}
	p.mu.Unlock()

	kinds := filters.Kinds()
	// Room for every placeholder plus every real result; the synchronous
	// placeholder sends below must never block, and a consumer that walks
	// away must not leak the workers.
	results := make(chan Result, len(kinds)*2)

	for _, kind := range kinds {
		results <- Result{
			Kind:        kind,
			Image:       Placeholder(kind, p.edge),
			Placeholder: true,
			Adjust:      adjust,
		}
	}

	go p.run(key, source, adjust, kinds, results)
	return results, true
}

// run downscales once and fans the per-kind engine passes out to workers.
func (p *Pool) run(key generationKey, source *images.Raster, adjust filters.Adjustments, kinds []filters.Kind, results chan<- Result) {
	base := images.DownscaleToBound(source, p.edge)

	work := make(chan filters.Kind)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for kind := range work {
				thumb := filters.Apply(base, kind, adjust)
				if thumb == nil {
					// That kind's cell keeps its placeholder; the other
					// kinds are unaffected.
					continue
				}
				results <- Result{
					Kind:   kind,
					Image:  thumb,
					Adjust: adjust,
				}
			}
		}()
	}

	for _, kind := range kinds {
		work <- kind
	}
	close(work)
	wg.Wait()
	close(results)

	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
}
