package images

import (
	"bytes"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// ErrUnreadableImage is returned when source bytes cannot be decoded by any
// supported codec. A session cannot be created from such bytes.
var ErrUnreadableImage = errors.New("images: unreadable or corrupt image data")

// magic numbers for format sniffing
var (
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	magicRIFF = []byte("RIFF")
	magicWEBP = []byte("WEBP")
)

// SniffFormat inspects the leading bytes of raw image data and reports the
// encoding, or an empty Format when the data matches no supported codec.
func SniffFormat(data []byte) Format {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], magicJPEG):
		return FormatJPEG
	case len(data) >= 4 && bytes.Equal(data[:4], magicPNG):
		return FormatPNG
	case len(data) >= 12 && bytes.Equal(data[:4], magicRIFF) && bytes.Equal(data[8:12], magicWEBP):
		return FormatWebP
	default:
		return ""
	}
}

// Decode turns raw JPEG, PNG or WebP bytes into an owned Raster.
//
// Arguments:
//   - data: The encoded image bytes.
//
// Returns:
//   - *Raster: The decoded buffer.
//   - error: ErrUnreadableImage (wrapped with the codec failure) when the
//     bytes cannot be decoded.
func Decode(data []byte) (*Raster, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrUnreadableImage, "empty input")
	}

	format := SniffFormat(data)
	if format == "" {
		return nil, errors.Wrap(ErrUnreadableImage, "unrecognized format")
	}

	var (
		raster *Raster
		err    error
	)
	switch format {
	case FormatJPEG:
		img, decodeErr := jpeg.Decode(bytes.NewReader(data))
		if decodeErr != nil {
			err = decodeErr
			break
		}
		raster = NewRaster(img, FormatJPEG)
	case FormatPNG:
		img, decodeErr := png.Decode(bytes.NewReader(data))
		if decodeErr != nil {
			err = decodeErr
			break
		}
		raster = NewRaster(img, FormatPNG)
	case FormatWebP:
		img, decodeErr := webp.Decode(bytes.NewReader(data))
		if decodeErr != nil {
			err = decodeErr
			break
		}
		raster = NewRaster(img, FormatWebP)
	}

	if err != nil {
		return nil, errors.Wrapf(ErrUnreadableImage, "%s decode: %v", format, err)
	}
	if raster == nil {
		return nil, errors.Wrapf(ErrUnreadableImage, "%s decode produced empty extent", format)
	}
	return raster, nil
}

// Encode serializes a Raster back to bytes in the requested format.
//
// Arguments:
//   - r: The raster to encode.
//   - format: Target encoding; when empty, the raster's source format is used.
//   - quality: JPEG/WebP quality 1-100; ignored for PNG.
//
// Returns:
//   - []byte: The encoded bytes.
//   - error: An error if encoding fails or the format is unsupported.
func Encode(r *Raster, format Format, quality int) ([]byte, error) {
	if r == nil {
		return nil, errors.New("images: cannot encode nil raster")
	}
	if format == "" {
		format = r.Format()
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, r.Image(), &jpeg.Options{Quality: quality}); err != nil {
			return nil, errors.Wrap(err, "jpeg encode")
		}
	case FormatPNG:
		if err := png.Encode(&buf, r.Image()); err != nil {
			return nil, errors.Wrap(err, "png encode")
		}
	case FormatWebP:
		if err := webp.Encode(&buf, r.Image(), &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, errors.Wrap(err, "webp encode")
		}
	default:
		return nil, errors.Errorf("images: unsupported encode format %q", format)
	}
	return buf.Bytes(), nil
}
