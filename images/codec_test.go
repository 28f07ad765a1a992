package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "unknown magic", data: []byte("not an image at all")},
		{name: "truncated jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.data)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadableImage)
		})
	}
}

func TestEncodeDecodeJPEG(t *testing.T) {
	src := NewRaster(gradient(64, 48), FormatJPEG)

	data, err := Encode(src, FormatJPEG, 90)
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, SniffFormat(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Width())
	assert.Equal(t, 48, decoded.Height())
	assert.Equal(t, FormatJPEG, decoded.Format())
}

func TestEncodeDecodePNGIsLossless(t *testing.T) {
	src := NewRaster(gradient(32, 32), FormatPNG)

	data, err := Encode(src, FormatPNG, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, SniffFormat(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, src.PixelEqual(decoded))
}

func TestEncodeDefaultsToSourceFormat(t *testing.T) {
	src := NewRaster(gradient(16, 16), FormatPNG)

	data, err := Encode(src, "", 90)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, SniffFormat(data))
}

func TestEncodeNilRaster(t *testing.T) {
	_, err := Encode(nil, FormatPNG, 90)
	assert.Error(t, err)
}
