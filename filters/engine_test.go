package filters

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxnet66/CloudAsset/images"
)

// testRaster builds a small gradient raster with varied channel content.
func testRaster(t *testing.T, width, height int) *images.Raster {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8(((x + y) * 255) / (width + height)),
				A: 255,
			})
		}
	}
	r := images.NewRaster(img, images.FormatPNG)
	require.NotNil(t, r)
	return r
}

// channelMeans returns the average R, G and B over the whole raster.
func channelMeans(r *images.Raster) (float64, float64, float64) {
	bounds := r.Bounds()
	var sumR, sumG, sumB, n float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := r.Image().At(x, y).RGBA()
			sumR += float64(cr >> 8)
			sumG += float64(cg >> 8)
			sumB += float64(cb >> 8)
			n++
		}
	}
	return sumR / n, sumG / n, sumB / n
}

func TestApplyIdentityFastPath(t *testing.T) {
	src := testRaster(t, 64, 48)

	out := Apply(src, KindIdentity, Adjustments{})

	// The fast path returns the source buffer itself, not a copy.
	assert.Same(t, src, out)
}

func TestApplyIsDeterministic(t *testing.T) {
	src := testRaster(t, 64, 48)

	first := Apply(src, KindSepia, Adjustments{Brightness: 3, Contrast: -2})
	second := Apply(src, KindSepia, Adjustments{Brightness: 3, Contrast: -2})

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.True(t, first.PixelEqual(second))
}

func TestApplyNeverMutatesSource(t *testing.T) {
	src := testRaster(t, 32, 32)
	reference := src.Clone()

	for _, kind := range Kinds() {
		Apply(src, kind, Adjustments{Brightness: 10, Contrast: -10})
	}

	assert.True(t, src.PixelEqual(reference), "source buffer was written to")
}

func TestApplyMonochromeDesaturates(t *testing.T) {
	src := testRaster(t, 40, 40)

	out := Apply(src, KindMonochrome, Adjustments{})
	require.NotNil(t, out)

	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := out.Image().At(x, y).RGBA()
			assert.InDelta(t, cr>>8, cg>>8, 1)
			assert.InDelta(t, cg>>8, cb>>8, 1)
		}
	}
}

func TestApplyVibranceKeepsGrayNeutral(t *testing.T) {
	// A gray ramp has no chroma to boost; saturation matrices leave it alone.
	img := image.NewRGBA(image.Rect(0, 0, 32, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 32; x++ {
			v := uint8((x * 255) / 32)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	src := images.NewRaster(img, images.FormatPNG)

	out := Apply(src, KindVibrance, Adjustments{})
	require.NotNil(t, out)

	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := out.Image().At(x, y).RGBA()
			assert.InDelta(t, cr>>8, cg>>8, 1)
			assert.InDelta(t, cg>>8, cb>>8, 1)
		}
	}
}

func TestApplyTemperatureDirection(t *testing.T) {
	src := testRaster(t, 48, 48)
	baseR, _, baseB := channelMeans(src)
	baseRatio := baseB / baseR

	cool := Apply(src, KindCool, Adjustments{})
	coolR, _, coolB := channelMeans(cool)
	assert.Greater(t, coolB/coolR, baseRatio, "cool must shift toward blue")

	warm := Apply(src, KindWarm, Adjustments{})
	warmR, _, warmB := channelMeans(warm)
	assert.Less(t, warmB/warmR, baseRatio, "warm must shift away from blue")
}

func TestApplyBrightnessDirection(t *testing.T) {
	src := testRaster(t, 48, 48)
	baseR, baseG, baseB := channelMeans(src)
	base := baseR + baseG + baseB

	brighter := Apply(src, KindIdentity, Adjustments{Brightness: 15})
	br, bg, bb := channelMeans(brighter)
	assert.Greater(t, br+bg+bb, base)

	darker := Apply(src, KindIdentity, Adjustments{Brightness: -15})
	dr, dg, db := channelMeans(darker)
	assert.Less(t, dr+dg+db, base)
}

func TestContrastMultiplierFloor(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float32
	}{
		{name: "zero is a no-op multiplier", value: 0, expected: 1},
		{name: "full positive deflection", value: 15, expected: 1.5},
		{name: "full negative deflection lands on the floor", value: -15, expected: 0.5},
		{name: "half negative deflection", value: -7.5, expected: 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ContrastMultiplier(tt.value), 1e-6)
			assert.Greater(t, ContrastMultiplier(tt.value), float32(0))
		})
	}
}

func TestSnapAdjust(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "in range untouched", value: 7.5, expected: 7.5},
		{name: "snaps to half step", value: 3.3, expected: 3.5},
		{name: "snaps down", value: -2.2, expected: -2},
		{name: "clamps above", value: 100, expected: 15},
		{name: "clamps below", value: -100, expected: -15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SnapAdjust(tt.value))
		})
	}
}

func TestApplyConcurrentInvocations(t *testing.T) {
	src := testRaster(t, 64, 64)
	expected := Apply(src, KindSepia, Adjustments{Contrast: 5})

	var wg sync.WaitGroup
	results := make([]*images.Raster, 8)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = Apply(src, KindSepia, Adjustments{Contrast: 5})
		}(i)
	}
	wg.Wait()

	for _, out := range results {
		require.NotNil(t, out)
		assert.True(t, out.PixelEqual(expected))
	}
}

func TestApplyDegenerateInputFallsBack(t *testing.T) {
	assert.Nil(t, Apply(nil, KindSepia, Adjustments{}))

	src := testRaster(t, 8, 8)
	out := Apply(src, Kind(99), Adjustments{})
	// An unknown kind degrades to the identity recipe.
	assert.Same(t, src, out)
}

func TestKindsOrderIsStable(t *testing.T) {
	expected := []Kind{KindIdentity, KindMonochrome, KindSepia, KindVibrance, KindCool, KindWarm}
	assert.Equal(t, expected, Kinds())
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("vaporwave")
	assert.Error(t, err)
}
