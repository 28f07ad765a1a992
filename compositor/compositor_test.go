package compositor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxnet66/CloudAsset/filters"
	"github.com/foxnet66/CloudAsset/images"
)

func testSource(t *testing.T, width, height int) *images.Raster {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 120,
				A: 255,
			})
		}
	}
	r := images.NewRaster(img, images.FormatJPEG)
	require.NotNil(t, r)
	return r
}

func TestGeometryNormalize(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		expected float64
	}{
		{name: "in range", rotation: 90, expected: 90},
		{name: "above full turn", rotation: 450, expected: 90},
		{name: "negative wraps", rotation: -90, expected: 270},
		{name: "zero", rotation: 0, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Geometry{Scale: 1, Rotation: tt.rotation}.Normalize()
			assert.Equal(t, tt.expected, g.Rotation)
		})
	}
}

func TestGeometryValidate(t *testing.T) {
	assert.NoError(t, DefaultGeometry().Validate())
	assert.Error(t, Geometry{Scale: 0}.Validate())
	assert.Error(t, Geometry{Scale: -2}.Validate())
}

func TestCommitIdentityGeometryMatchesEnginePass(t *testing.T) {
	source := testSource(t, 300, 200)
	adjust := filters.Adjustments{Brightness: 3, Contrast: -2}

	committed, err := Commit(source, DefaultGeometry(), filters.KindSepia, adjust)
	require.NoError(t, err)
	require.NotNil(t, committed)

	// Full resolution is preserved and the result equals one engine pass
	// with the approved parameters: parameters, not preview pixels, carry
	// from preview to commit.
	assert.Equal(t, source.Width(), committed.Width())
	assert.Equal(t, source.Height(), committed.Height())
	expected := filters.Apply(source, filters.KindSepia, adjust)
	assert.True(t, committed.PixelEqual(expected))
}

func TestCommitIdentityEverythingReturnsSource(t *testing.T) {
	source := testSource(t, 120, 80)

	committed, err := Commit(source, DefaultGeometry(), filters.KindIdentity, filters.Adjustments{})
	require.NoError(t, err)
	assert.Same(t, source, committed)
}

func TestCommitFullResolutionWithGeometry(t *testing.T) {
	source := testSource(t, 400, 300)
	geometry := Geometry{Scale: 0.5, Rotation: 90, TranslateX: 10, TranslateY: -5}

	committed, err := Commit(source, geometry, filters.KindMonochrome, filters.Adjustments{})
	require.NoError(t, err)
	require.NotNil(t, committed)

	// The canvas is sized to the original regardless of the transform.
	assert.Equal(t, 400, committed.Width())
	assert.Equal(t, 300, committed.Height())
}

func TestCommitRotationMovesPixels(t *testing.T) {
	source := testSource(t, 200, 200)

	rotated, err := Commit(source, Geometry{Scale: 1, Rotation: 180}, filters.KindIdentity, filters.Adjustments{})
	require.NoError(t, err)
	require.NotNil(t, rotated)

	assert.False(t, rotated.PixelEqual(source))

	// A 180 degree rotation maps the top-left region onto the bottom-right.
	or, og, _, _ := source.Image().At(10, 10).RGBA()
	rr, rg, _, _ := rotated.Image().At(189, 189).RGBA()
	assert.InDelta(t, or>>8, rr>>8, 6)
	assert.InDelta(t, og>>8, rg>>8, 6)
}

func TestCommitDegenerateGeometryFails(t *testing.T) {
	source := testSource(t, 50, 50)

	_, err := Commit(source, Geometry{Scale: 0}, filters.KindIdentity, filters.Adjustments{})
	assert.Error(t, err)

	_, err = Commit(nil, DefaultGeometry(), filters.KindIdentity, filters.Adjustments{})
	assert.Error(t, err)
}
