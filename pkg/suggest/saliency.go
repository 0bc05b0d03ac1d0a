package suggest

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// SaliencySuggester picks the most interesting square with smartcrop
type SaliencySuggester struct {
	resampler imaging.ResampleFilter
}

// NewSaliencySuggester creates a suggester that runs entirely locally
func NewSaliencySuggester() *SaliencySuggester {
	return &SaliencySuggester{resampler: imaging.Box}
}

// Suggest implements Suggester
func (s *SaliencySuggester) Suggest(ctx context.Context, img image.Image) (types.CropRect, error) {
	if err := ctx.Err(); err != nil {
		return types.CropRect{}, err
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: s.resampler})

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		crop, err := analyzer.FindBestCrop(img, 1, 1)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return types.CropRect{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return types.CropRect{}, fmt.Errorf("finding best crop: %w", result.err)
		}
		rect := rectFromImage(result.crop, img.Bounds())
		// smartcrop may round one side down by a pixel
		if rect.Height < rect.Width {
			rect.Width = rect.Height
		}
		rect.Height = rect.Width
		return rect, nil
	}
}

// resizer implements the smartcrop.Resizer interface
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}
