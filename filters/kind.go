// Package filters - the color transform engine: a closed set of filter
// recipes plus the brightness/contrast adjustment operators layered on top.
package filters

import "github.com/pkg/errors"

// Kind identifies one of the fixed color-transform recipes. The zero value is
// KindIdentity. Ordering among variants is fixed and used for stable
// thumbnail layout, so new variants append only.
type Kind int

const (
	// KindIdentity leaves colors unchanged.
	KindIdentity Kind = iota
	// KindMonochrome desaturates to grayscale.
	KindMonochrome
	// KindSepia applies a fixed-intensity sepia tone.
	KindSepia
	// KindVibrance boosts color saturation.
	KindVibrance
	// KindCool shifts the white point toward a cooler neutral.
	KindCool
	// KindWarm shifts the white point toward a warmer neutral.
	KindWarm

	numKinds
)

var kindNames = [numKinds]string{
	KindIdentity:   "original",
	KindMonochrome: "monochrome",
	KindSepia:      "sepia",
	KindVibrance:   "vibrance",
	KindCool:       "cool",
	KindWarm:       "warm",
}

// Kinds returns every filter kind in its fixed display order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Valid reports whether k names a known recipe.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// String returns the display name of the filter.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a display name back to its Kind.
//
// Arguments:
//   - name: The display name, e.g. "sepia".
//
// Returns:
//   - Kind: The matching kind.
//   - error: An error when the name matches no recipe.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return KindIdentity, errors.Errorf("filters: unknown filter %q", name)
}
