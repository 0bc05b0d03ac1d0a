package suggest

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/menta2k/photo-cropper/pkg/client"
	"github.com/menta2k/photo-cropper/pkg/detection"
	"github.com/menta2k/photo-cropper/pkg/processing"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// VisionOptions controls how the image is sent to the model and how the
// detected box is turned into a square
type VisionOptions struct {
	Model       string
	SendFormat  string
	SendSize    int
	SendQuality int
	// Padding grows the subject box on every side, as a fraction of its longer side
	Padding float64
}

// DefaultVisionOptions returns the options used by the CLI
func DefaultVisionOptions() VisionOptions {
	return VisionOptions{
		Model:       "openbmb/minicpm-v4.5",
		SendFormat:  "jpg",
		SendSize:    1024,
		SendQuality: 85,
		Padding:     0.35,
	}
}

// VisionSuggester frames the subject reported by a vision model
type VisionSuggester struct {
	detector  *detection.Detector
	processor *processing.Processor
	opts      VisionOptions
}

// NewVisionSuggester creates a suggester backed by a vision model client
func NewVisionSuggester(c client.VisionClient, opts VisionOptions) *VisionSuggester {
	return &VisionSuggester{
		detector:  detection.NewDetector(c),
		processor: processing.NewProcessor(),
		opts:      opts,
	}
}

// Suggest implements Suggester. A model that finds no subject yields
// detection.ErrNoSubject.
func (v *VisionSuggester) Suggest(ctx context.Context, img image.Image) (types.CropRect, error) {
	imgB64, err := v.processor.PrepareImageForModel(img, v.opts.SendFormat, v.opts.SendSize, v.opts.SendQuality)
	if err != nil {
		return types.CropRect{}, fmt.Errorf("failed to prepare image for model: %w", err)
	}

	result, err := v.detector.DetectSubject(ctx, v.opts.Model, imgB64)
	if err != nil {
		return types.CropRect{}, err
	}

	return squareAround(result.Primary.Box, types.SizeOf(img), v.opts.Padding), nil
}

// squareAround converts a normalized subject box into a square in pixels,
// centered on the box and padded
func squareAround(box types.Box, size types.Size, padding float64) types.CropRect {
	w := box.W * size.Width
	h := box.H * size.Height
	side := math.Max(w, h) * (1 + 2*padding)
	side = math.Min(side, math.Min(size.Width, size.Height))

	cx := (box.X + box.W/2) * size.Width
	cy := (box.Y + box.H/2) * size.Height
	return types.CropRect{
		X:      cx - side/2,
		Y:      cy - side/2,
		Width:  side,
		Height: side,
	}
}
