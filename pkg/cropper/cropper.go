package cropper

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// ErrEmptyCrop is returned when the crop rectangle has no overlap with the image
var ErrEmptyCrop = errors.New("empty crop rectangle")

// SquareCropper cuts a geometry crop rectangle out of an upright image
type SquareCropper struct {
	config CropConfig
}

// CropConfig holds configuration for the pixel cropper
type CropConfig struct {
	// OutputSize is the side of the produced square in pixels, 0 keeps the crop size
	OutputSize     int
	AllowUpscaling bool
	Filter         imaging.ResampleFilter
}

// DefaultConfig returns the cropper defaults
func DefaultConfig() CropConfig {
	return CropConfig{
		OutputSize:     512,
		AllowUpscaling: false,
		Filter:         imaging.Lanczos,
	}
}

// New creates a new SquareCropper with default configuration
func New() *SquareCropper {
	return &SquareCropper{config: DefaultConfig()}
}

// NewWithConfig creates a new SquareCropper with custom configuration
func NewWithConfig(config CropConfig) *SquareCropper {
	if config.Filter.Kernel == nil && config.Filter.Support == 0 {
		config.Filter = imaging.Lanczos
	}
	return &SquareCropper{config: config}
}

// Config returns the active configuration
func (c *SquareCropper) Config() CropConfig {
	return c.config
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image image.Image
	// Rect is the requested rectangle in source pixels
	Rect types.CropRect
	// Bounds is the whole-pixel region that was actually cut
	Bounds image.Rectangle
}

// Crop cuts rect out of img and scales it to the configured output size
func (c *SquareCropper) Crop(img image.Image, rect types.CropRect) (CropResult, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return CropResult{}, fmt.Errorf("invalid image dimensions")
	}

	region := rect.Rectangle().Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		return CropResult{}, fmt.Errorf("%w: %v outside %v", ErrEmptyCrop, rect, bounds)
	}
	region = squareUp(region)

	cropped := imaging.Crop(img, region)

	side := c.config.OutputSize
	if side > 0 && (side < region.Dx() || c.config.AllowUpscaling) {
		cropped = imaging.Resize(cropped, side, side, c.config.Filter)
	}

	return CropResult{
		Image:  cropped,
		Rect:   rect,
		Bounds: region,
	}, nil
}

// squareUp trims the longer side after rounding so the result stays square
func squareUp(r image.Rectangle) image.Rectangle {
	side := r.Dx()
	if r.Dy() < side {
		side = r.Dy()
	}
	return image.Rect(r.Min.X, r.Min.Y, r.Min.X+side, r.Min.Y+side)
}

// Preview returns a fast, lower quality thumbnail of the crop that fits in maxSide
func (c *SquareCropper) Preview(img image.Image, rect types.CropRect, maxSide int) (image.Image, error) {
	bounds := img.Bounds()
	region := squareUp(rect.Rectangle().Add(bounds.Min).Intersect(bounds))
	if region.Empty() {
		return nil, fmt.Errorf("%w: %v outside %v", ErrEmptyCrop, rect, bounds)
	}
	if maxSide <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", maxSide)
	}

	return resize.Thumbnail(uint(maxSide), uint(maxSide), imaging.Crop(img, region), resize.Bilinear), nil
}
