// Package suggest proposes an initial framing for a freshly picked photo, so
// the crop session can open on the subject instead of the image center.
package suggest

import (
	"context"
	"fmt"
	"image"

	"github.com/menta2k/photo-cropper/pkg/geometry"
	"github.com/menta2k/photo-cropper/pkg/processing"
	"github.com/menta2k/photo-cropper/pkg/session"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// Suggester proposes a square crop rectangle in the image's pixel coordinates
type Suggester interface {
	Suggest(ctx context.Context, img image.Image) (types.CropRect, error)
}

// Seed starts a session framed on the rectangle proposed by s. The proposal
// goes through the same commit clamp as a gesture.
func Seed(ctx context.Context, s Suggester, src *processing.Source, viewport types.Size) (*session.Session, error) {
	rect, err := s.Suggest(ctx, src.Image)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	// a window smaller than the widest zoom allows would be re-centered by the
	// zoom clamp, so grow it around its center first
	if minSide := src.Size.Width / geometry.MaxZoom; rect.Width < minSide {
		cx, cy := rect.Center()
		rect = types.CropRect{X: cx - minSide/2, Y: cy - minSide/2, Width: minSide, Height: minSide}
	}
	rect = geometry.ClampRect(rect, src.Size)

	zoom, offset, err := geometry.FramingForRect(rect, src.Size, viewport)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return session.Restore(src.Size, viewport, session.State{Zoom: zoom, Offset: offset})
}

func rectFromImage(r image.Rectangle, bounds image.Rectangle) types.CropRect {
	r = r.Sub(bounds.Min)
	return types.CropRect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}
