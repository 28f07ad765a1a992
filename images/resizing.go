package images

import (
	"image"

	"github.com/nfnt/resize"
)

// DefaultWorkingEdge is the longest-edge bound applied to a source before any
// filter or adjustment pass. Only the geometric compositor operates above it.
const DefaultWorkingEdge = 1200

// DownscaleToBound returns a raster whose longest edge does not exceed
// maxEdge, preserving aspect ratio. Rasters already within the bound are
// returned unchanged; callers may rely on pointer identity in that case.
//
// Arguments:
//   - r: The source raster.
//   - maxEdge: The longest-edge bound in pixels.
//
// Returns:
//   - *Raster: The bounded raster.
func DownscaleToBound(r *Raster, maxEdge int) *Raster {
	if r == nil {
		return nil
	}
	if maxEdge <= 0 {
		maxEdge = DefaultWorkingEdge
	}
	if r.LongestEdge() <= maxEdge {
		return r
	}

	var width, height uint
	if r.Width() >= r.Height() {
		width = uint(maxEdge)
		height = 0 // preserve aspect ratio
	} else {
		width = 0
		height = uint(maxEdge)
	}

	// Lanczos3; the working copy is resized once per session.
	scaled := resize.Resize(width, height, r.Image(), resize.Lanczos3)
	out := NewRaster(scaled, r.Format())
	if out == nil {
		// Degenerate result; favor the unscaled source over a broken buffer.
		return r
	}
	return out
}

// ScaleTo resizes a raster to exact pixel dimensions using bilinear
// resampling, the quality tier used for thumbnail cells.
func ScaleTo(r *Raster, width, height int) *Raster {
	if r == nil || width <= 0 || height <= 0 {
		return r
	}
	if r.Width() == width && r.Height() == height {
		return r
	}
	scaled := resize.Resize(uint(width), uint(height), r.Image(), resize.Bilinear)
	out := NewRaster(scaled, r.Format())
	if out == nil {
		return r
	}
	return out
}

// Flat returns a raster of the given size filled with a single color,
// expressed as 8-bit RGBA components. Used for placeholder tiles.
func Flat(width, height int, cr, cg, cb, ca uint8) *Raster {
	if width <= 0 || height <= 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i+0] = cr
		dst.Pix[i+1] = cg
		dst.Pix[i+2] = cb
		dst.Pix[i+3] = ca
	}
	return Own(dst, FormatPNG)
}
