// Package geometry converts pan/zoom gestures over a viewport into square
// crop rectangles on the upright source image.
//
// All functions are pure. Zoom and offset values passed in are owned by the
// caller, which stores the committed pair between gestures.
package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// FitScale returns the multiplier that maps source pixels to viewport points
// before any user zoom. The source is scaled so that its constraining axis
// spans the viewport exactly.
func FitScale(source, viewport types.Size) (float64, error) {
	if err := validateSize("source", source); err != nil {
		return 0, err
	}
	if err := validateSize("viewport", viewport); err != nil {
		return 0, err
	}

	if source.AspectRatio() >= viewport.AspectRatio() {
		return viewport.Width / source.Width, nil
	}
	return viewport.Height / source.Height, nil
}

// UprightSize returns the pixel size after applying an EXIF orientation.
// Orientations 5 through 8 involve a quarter turn and swap the axes.
func UprightSize(stored types.Size, orientation int) types.Size {
	switch orientation {
	case 5, 6, 7, 8:
		return types.Size{Width: stored.Height, Height: stored.Width}
	default:
		return stored
	}
}

func validateSize(name string, s types.Size) error {
	if !s.Valid() || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return fmt.Errorf("%s size %gx%g: %w", name, s.Width, s.Height, ErrInvalidDimension)
	}
	return nil
}

func validateScale(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s %g: %w", name, v, ErrInvalidDimension)
	}
	return nil
}
