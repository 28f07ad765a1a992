// Package compositor - folds the user's geometric edits into a single affine
// draw of the full-resolution source at commit time.
package compositor

import (
	"image"
	"math"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/images"
)

// Geometry holds the user-driven scale, rotation and pan. It is applied only
// at commit time, never during live preview recomputation, which keeps the
// interactive filter passes decoupled from geometric cost.
type Geometry struct {
	// Scale is the uniform zoom factor; must be positive. 1 is unscaled.
	Scale float64
	// Rotation is in degrees, normalized mod 360.
	Rotation float64
	// TranslateX and TranslateY pan the image in pixels of the original.
	TranslateX float64
	TranslateY float64
}

// DefaultGeometry returns the no-op transform.
func DefaultGeometry() Geometry {
	return Geometry{Scale: 1}
}

// Normalize returns a copy with the rotation wrapped into [0, 360).
func (g Geometry) Normalize() Geometry {
	g.Rotation = math.Mod(g.Rotation, 360)
	if g.Rotation < 0 {
		g.Rotation += 360
	}
	return g
}

// IsIdentity reports whether the transform would leave every pixel in place.
func (g Geometry) IsIdentity() bool {
	g = g.Normalize()
	return g.Scale == 1 && g.Rotation == 0 && g.TranslateX == 0 && g.TranslateY == 0
}

// Validate checks the transform for degenerate parameters.
func (g Geometry) Validate() error {
	if g.Scale <= 0 {
		return errors.Errorf("compositor: scale must be positive, got %v", g.Scale)
	}
	if math.IsNaN(g.Scale) || math.IsNaN(g.Rotation) ||
		math.IsNaN(g.TranslateX) || math.IsNaN(g.TranslateY) {
		return errors.New("compositor: geometry contains NaN")
	}
	return nil
}

// aff3 composes the commit transform: move the canvas center to the origin,
// scale, rotate, then move back plus the user's pan. Row-major f64.Aff3 as
// consumed by x/image/draw.
func (g Geometry) aff3(width, height int) f64.Aff3 {
	cx := float64(width) / 2
	cy := float64(height) / 2
	theta := g.Rotation * math.Pi / 180
	cos := math.Cos(theta)
	sin := math.Sin(theta)
	s := g.Scale

	// rotate(theta) * scale(s) applied around (cx, cy), panned by (tx, ty):
	// x' = s*cos*(x-cx) - s*sin*(y-cy) + cx + tx
	// y' = s*sin*(x-cx) + s*cos*(y-cy) + cy + ty
	a := s * cos
	b := -s * sin
	d := s * sin
	e := s * cos
	return f64.Aff3{
		a, b, cx + g.TranslateX - a*cx - b*cy,
		d, e, cy + g.TranslateY - d*cx - e*cy,
	}
}

// Commit produces the final full-resolution buffer handed to persistence:
// one affine draw of the original source onto a fresh canvas sized to the
// original, followed by a single transform-engine pass with the parameters
// the user approved interactively. Parameters, not preview pixels, are the
// source of truth carried from preview to commit.
//
// Arguments:
//   - source: The original full-resolution raster, not the working copy.
//   - geometry: Scale/rotation/pan folded into one affine draw.
//   - kind: The approved filter recipe.
//   - adjust: The approved brightness/contrast values.
//
// Returns:
//   - *images.Raster: The committed buffer.
//   - error: A commit error when the compositor cannot produce the buffer;
//     the caller's session survives for retry.
func Commit(source *images.Raster, geometry Geometry, kind filters.Kind, adjust filters.Adjustments) (*images.Raster, error) {
	if source == nil {
		return nil, errors.New("compositor: nil source")
	}
	geometry = geometry.Normalize()
	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	composed := source
	if !geometry.IsIdentity() {
		bounds := source.Bounds()
		dst := image.NewRGBA(bounds)
		xdraw.CatmullRom.Transform(dst, geometry.aff3(bounds.Dx(), bounds.Dy()),
			source.Image(), bounds, xdraw.Over, nil)

		composed = images.Own(dst, source.Format())
		if composed == nil {
			return nil, errors.New("compositor: affine draw produced empty extent")
		}
	}

	// Final engine pass runs at full resolution; Apply falls back to the
	// composed buffer on internal failure rather than erroring.
	return filters.Apply(composed, kind, adjust), nil
}
