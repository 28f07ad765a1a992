package filters

import (
	"image"
	"image/draw"
	"math"

	"github.com/foxnet66/CloudAsset/images"
)

const (
	// AdjustMin and AdjustMax bound the brightness and contrast sliders.
	AdjustMin = -15.0
	AdjustMax = 15.0
	// AdjustStep is the slider granularity; values snap to half steps.
	AdjustStep = 0.5

	// adjustScale maps the advertised slider range onto the gentle range of
	// the underlying operators: an offset or multiplier delta of value/30.
	adjustScale = 1.0 / 30.0

	// contrastFloor is the lowest contrast multiplier ever applied. A full
	// negative deflection lands exactly on the floor, never reaching zero.
	contrastFloor = 0.5
)

// Adjustments are the continuous brightness/contrast knobs layered on top of
// the selected filter kind. The zero value is a no-op.
type Adjustments struct {
	Brightness float64
	Contrast   float64
}

// SnapAdjust clamps a slider value to [AdjustMin, AdjustMax] and snaps it to
// the nearest half step.
func SnapAdjust(v float64) float64 {
	v = images.Clamp(v, AdjustMin, AdjustMax)
	return math.Round(v/AdjustStep) * AdjustStep
}

// Normalize returns a copy with both knobs clamped and snapped.
func (a Adjustments) Normalize() Adjustments {
	return Adjustments{
		Brightness: SnapAdjust(a.Brightness),
		Contrast:   SnapAdjust(a.Contrast),
	}
}

// IsZero reports whether both knobs sit at their no-op default.
func (a Adjustments) IsZero() bool {
	return a.Brightness == 0 && a.Contrast == 0
}

// Equal reports whether two adjustment sets are identical.
func (a Adjustments) Equal(other Adjustments) bool {
	return a.Brightness == other.Brightness && a.Contrast == other.Contrast
}

// brightnessOffset converts the slider value into the additive channel
// offset, in [0, 255] space.
func brightnessOffset(v float64) float32 {
	return float32(v * adjustScale * 255)
}

// ContrastMultiplier converts the slider value into the multiplicative
// contrast factor: positive values scale above 1.0, negative values scale
// down toward the documented floor.
func ContrastMultiplier(v float64) float32 {
	m := 1 + v*adjustScale
	if m < contrastFloor {
		m = contrastFloor
	}
	return float32(m)
}

// Apply runs the filter recipe and adjustment operators over a source
// raster, producing a new raster. It is pure and deterministic: safe to
// invoke concurrently on independent inputs, no side effects, and the source
// is never written to.
//
// The pass order is fixed: filter color matrix, then brightness, then
// contrast. When the filter is identity and both adjustments are zero the
// source is returned unchanged (the documented fast path). On any internal
// failure to materialize the transformed buffer the pre-transform buffer is
// returned instead; the pipeline favors visible-but-unedited output over a
// broken preview.
//
// Arguments:
//   - src: The source raster, typically already bounded to the working edge.
//   - kind: The filter recipe to apply.
//   - adj: Brightness/contrast knobs; clamped and snapped before use.
//
// Returns:
//   - *images.Raster: The transformed raster, or src on the fast path and on
//     fallback.
func Apply(src *images.Raster, kind Kind, adj Adjustments) *images.Raster {
	if src == nil {
		return nil
	}

	adj = adj.Normalize()
	if !kind.Valid() {
		kind = KindIdentity
	}
	if kind == KindIdentity && adj.IsZero() {
		return src
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return src
	}

	srcRGBA := toRGBA(src.Image())
	dst := image.NewRGBA(bounds)

	matrix := Recipe(kind)
	useMatrix := kind != KindIdentity
	offset := brightnessOffset(adj.Brightness)
	useBrightness := adj.Brightness != 0
	multiplier := ContrastMultiplier(adj.Contrast)
	useContrast := adj.Contrast != 0

	width := bounds.Dx()
	images.Parallel(bounds.Dy(), func(partStart, partEnd int) {
		for y := partStart; y < partEnd; y++ {
			rowOff := y * srcRGBA.Stride
			dstOff := y * dst.Stride
			for x := 0; x < width; x++ {
				i := rowOff + x*4
				r := float32(srcRGBA.Pix[i+0])
				g := float32(srcRGBA.Pix[i+1])
				b := float32(srcRGBA.Pix[i+2])
				a := float32(srcRGBA.Pix[i+3])

				if useMatrix {
					nr := matrix[0]*r + matrix[1]*g + matrix[2]*b + matrix[3]*a + matrix[4]
					ng := matrix[5]*r + matrix[6]*g + matrix[7]*b + matrix[8]*a + matrix[9]
					nb := matrix[10]*r + matrix[11]*g + matrix[12]*b + matrix[13]*a + matrix[14]
					na := matrix[15]*r + matrix[16]*g + matrix[17]*b + matrix[18]*a + matrix[19]
					r, g, b, a = nr, ng, nb, na
				}

				if useBrightness {
					r += offset
					g += offset
					b += offset
				}

				if useContrast {
					// Pivot around mid-gray so the multiplier stretches or
					// flattens the range without shifting overall exposure.
					r = (r-127.5)*multiplier + 127.5
					g = (g-127.5)*multiplier + 127.5
					b = (b-127.5)*multiplier + 127.5
				}

				j := dstOff + x*4
				dst.Pix[j+0] = clampByte(r)
				dst.Pix[j+1] = clampByte(g)
				dst.Pix[j+2] = clampByte(b)
				dst.Pix[j+3] = clampByte(a)
			}
		}
	})

	out := images.Own(dst, src.Format())
	if out == nil {
		return src
	}
	return out
}

// toRGBA returns a *image.RGBA view of src, drawing through the standard
// library when the source uses another color model.
func toRGBA(src image.Image) *image.RGBA {
	if r, ok := src.(*image.RGBA); ok {
		return r
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
