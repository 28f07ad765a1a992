package filters

import "github.com/chewxy/math32"

// ColorMatrix is a 5x4 color transformation matrix stored in row-major order
// as [R, G, B, A, translate] for each output channel:
//
//	R' = m[0]*R + m[1]*G + m[2]*B + m[3]*A + m[4]
//	G' = m[5]*R + m[6]*G + m[7]*B + m[8]*A + m[9]
//	B' = m[10]*R + m[11]*G + m[12]*B + m[13]*A + m[14]
//	A' = m[15]*R + m[16]*G + m[17]*B + m[18]*A + m[19]
//
// Channel inputs are in the range [0, 255]. Translation values (indices 4,
// 9, 14, 19) are added after multiplication.
type ColorMatrix [20]float32

// identityMatrix leaves every channel unchanged.
var identityMatrix = ColorMatrix{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// sepiaMatrix is the classic full-strength sepia tone matrix.
var sepiaMatrix = ColorMatrix{
	0.393, 0.769, 0.189, 0, 0,
	0.349, 0.686, 0.168, 0, 0,
	0.272, 0.534, 0.131, 0, 0,
	0, 0, 0, 1, 0,
}

// saturateMatrix builds the SVG saturate matrix for the given factor using
// ITU-R BT.709 luminance coefficients. factor 1 is a no-op, 0 is grayscale,
// values above 1 boost saturation.
func saturateMatrix(factor float32) ColorMatrix {
	inv := 1 - factor
	r := 0.2126 * inv
	g := 0.7152 * inv
	b := 0.0722 * inv
	return ColorMatrix{
		r + factor, g, b, 0, 0,
		r, g + factor, b, 0, 0,
		r, g, b + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// lerp returns a matrix interpolated between the identity and m. t=0 is the
// identity, t=1 is m. Used to run sepia at a fixed partial intensity.
func (m ColorMatrix) lerp(t float32) ColorMatrix {
	var out ColorMatrix
	for i := range m {
		out[i] = identityMatrix[i] + (m[i]-identityMatrix[i])*t
	}
	return out
}

// gainMatrix scales each color channel independently, preserving alpha.
func gainMatrix(rGain, gGain, bGain float32) ColorMatrix {
	return ColorMatrix{
		rGain, 0, 0, 0, 0,
		0, gGain, 0, 0, 0,
		0, 0, bGain, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// kelvinToRGB approximates the RGB rendering of a black-body illuminant at
// the given color temperature, returning channels in [0, 255]. The piecewise
// fit is accurate enough for white-balance gain derivation; the temperature
// filters only need the direction and approximate scale of the shift.
func kelvinToRGB(kelvin float32) (r, g, b float32) {
	t := kelvin / 100

	if t <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math32.Pow(t-60, -0.1332047592)
	}

	if t <= 66 {
		g = 99.4708025861*math32.Log(t) - 161.1195681661
	} else {
		g = 288.1221695283 * math32.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math32.Log(t-10) - 305.0447927307
	}

	return clamp255(r), clamp255(g), clamp255(b)
}

// temperatureMatrix derives the white-balance gains that make the target
// illuminant the neutral point, relative to the reference illuminant. Gains
// are normalized against the green channel so overall brightness holds.
func temperatureMatrix(targetKelvin float32) ColorMatrix {
	refR, refG, refB := kelvinToRGB(referenceKelvin)
	tgtR, tgtG, tgtB := kelvinToRGB(targetKelvin)

	rGain := refR / tgtR
	gGain := refG / tgtG
	bGain := refB / tgtB

	return gainMatrix(rGain/gGain, 1, bGain/gGain)
}

func clamp255(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

const (
	// referenceKelvin is the assumed scene illuminant (daylight).
	referenceKelvin = 6500
	// coolTargetKelvin is the neutral point of the cool-temperature filter.
	coolTargetKelvin = 5000
	// warmTargetKelvin is the neutral point of the warm-temperature filter.
	warmTargetKelvin = 7000

	// sepiaIntensity is the fixed partial strength of the sepia filter.
	sepiaIntensity = 0.8
	// vibranceBoost is the fixed saturation boost of the vibrance filter.
	vibranceBoost = 0.5
)

// recipes maps every filter kind to its color matrix, built once at package
// init. The exhaustive indexing guarantees each kind has a recipe.
var recipes = [numKinds]ColorMatrix{
	KindIdentity:   identityMatrix,
	KindMonochrome: saturateMatrix(0),
	KindSepia:      sepiaMatrix.lerp(sepiaIntensity),
	KindVibrance:   saturateMatrix(1 + vibranceBoost),
	KindCool:       temperatureMatrix(coolTargetKelvin),
	KindWarm:       temperatureMatrix(warmTargetKelvin),
}

// Recipe returns the color matrix for a filter kind. Unknown kinds map to
// the identity so a stray value degrades to visible-but-unedited output.
func Recipe(k Kind) ColorMatrix {
	if !k.Valid() {
		return identityMatrix
	}
	return recipes[k]
}
