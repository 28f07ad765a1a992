// Package images - owned raster buffers and the processing utilities shared
// by every stage of the photo adjustment pipeline.
package images

import (
	"image"
	"image/draw"
)

// Format represents supported image encodings.
type Format string

// Format constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG Format = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP Format = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG Format = "png"
)

// Raster is an owned, immutable pixel buffer plus its dimensions and the
// encoding it was decoded from. A Raster is never mutated in place; every
// pipeline stage that changes pixel content returns a new Raster.
type Raster struct {
	pix    *image.RGBA
	width  int
	height int
	format Format
}

// NewRaster wraps a decoded image.Image into an owned Raster.
//
// The source is copied into a fresh premultiplied RGBA buffer so the Raster
// does not alias caller-owned memory.
//
// Arguments:
//   - img: The decoded image to take ownership of.
//   - format: The encoding the image was decoded from.
//
// Returns:
//   - *Raster: The owned buffer, or nil when img is nil or empty.
func NewRaster(img image.Image, format Format) *Raster {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return &Raster{
		pix:    dst,
		width:  bounds.Dx(),
		height: bounds.Dy(),
		format: format,
	}
}

// Own wraps an RGBA buffer without copying. The caller hands over ownership
// and must not write through dst afterwards; pipeline stages use this to
// publish buffers they just finished producing themselves.
func Own(dst *image.RGBA, format Format) *Raster {
	if dst == nil || dst.Rect.Dx() <= 0 || dst.Rect.Dy() <= 0 {
		return nil
	}
	return &Raster{
		pix:    dst,
		width:  dst.Rect.Dx(),
		height: dst.Rect.Dy(),
		format: format,
	}
}

// Width returns the pixel width of the buffer.
func (r *Raster) Width() int { return r.width }

// Height returns the pixel height of the buffer.
func (r *Raster) Height() int { return r.height }

// Format returns the encoding the buffer was decoded from.
func (r *Raster) Format() Format { return r.format }

// Bounds returns the buffer extent as an image.Rectangle anchored at (0,0).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// LongestEdge returns the larger of width and height.
func (r *Raster) LongestEdge() int {
	if r.width >= r.height {
		return r.width
	}
	return r.height
}

// Image exposes the underlying pixels as a read-only image.Image.
//
// Callers must not type-assert and write through the result; transform
// stages that need writable pixels use Clone instead.
func (r *Raster) Image() image.Image { return r.pix }

// Clone returns a deep copy whose pixel memory is independent of the
// receiver. This is the only sanctioned way to obtain a writable buffer
// derived from a Raster.
func (r *Raster) Clone() *Raster {
	dst := image.NewRGBA(r.pix.Rect)
	copy(dst.Pix, r.pix.Pix)
	return &Raster{
		pix:    dst,
		width:  r.width,
		height: r.height,
		format: r.format,
	}
}

// PixelEqual reports whether two rasters have identical dimensions and
// byte-identical pixel content.
//
// Arguments:
//   - other: The raster to compare against.
//
// Returns:
//   - bool: True when both buffers match pixel for pixel.
func (r *Raster) PixelEqual(other *Raster) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.width != other.width || r.height != other.height {
		return false
	}
	if len(r.pix.Pix) != len(other.pix.Pix) {
		return false
	}
	for i := range r.pix.Pix {
		if r.pix.Pix[i] != other.pix.Pix[i] {
			return false
		}
	}
	return true
}
