package geometry

import (
	"math"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// Committed zoom range, both bounds inclusive
const (
	MinZoom = 1.0
	MaxZoom = 4.0
)

// ApplyZoomDelta scales the committed zoom by a live pinch magnification.
// The result is left unclamped until the gesture is committed.
func ApplyZoomDelta(committedZoom, magnification float64) float64 {
	return committedZoom * magnification
}

// ApplyPanDelta adds a live drag translation to the committed offset.
// The result is left unclamped until the gesture is committed.
func ApplyPanDelta(committed, translation types.Offset) types.Offset {
	return committed.Add(translation)
}

// ClampZoom limits a zoom factor to [MinZoom, MaxZoom]
func ClampZoom(zoom float64) float64 {
	return clamp(zoom, MinZoom, MaxZoom)
}

// PanBounds returns the maximum offset magnitude per axis for a zoom factor.
// An axis where the zoomed image does not exceed the viewport gets 0.
func PanBounds(source types.Size, fitScale, zoom float64, viewport types.Size) types.Offset {
	imageWidth := source.Width * fitScale * zoom
	imageHeight := source.Height * fitScale * zoom

	var bounds types.Offset
	if imageWidth > viewport.Width {
		bounds.DX = (imageWidth - viewport.Width) / 2
	}
	if imageHeight > viewport.Height {
		bounds.DY = (imageHeight - viewport.Height) / 2
	}
	return bounds
}

// ClampOffset limits each axis of offset to [-bound, +bound]
func ClampOffset(offset, bounds types.Offset) types.Offset {
	return types.Offset{
		DX: clampAxis(offset.DX, bounds.DX),
		DY: clampAxis(offset.DY, bounds.DY),
	}
}

func clampAxis(v, bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	if v > 0 {
		return math.Min(bound, v)
	}
	return math.Max(-bound, v)
}

// CommitZoom turns the transient zoom and offset of a finished gesture into
// durable values. The zoom is clamped first and the pan bounds are derived from
// the clamped zoom, so calling it again with its own output changes nothing.
func CommitZoom(transientZoom float64, source types.Size, fitScale float64, viewport types.Size, prior types.Offset) (float64, types.Offset, error) {
	if err := validateSize("source", source); err != nil {
		return 0, types.Offset{}, err
	}
	if err := validateSize("viewport", viewport); err != nil {
		return 0, types.Offset{}, err
	}
	if err := validateScale("fit scale", fitScale); err != nil {
		return 0, types.Offset{}, err
	}
	if math.IsNaN(transientZoom) {
		return 0, types.Offset{}, validateScale("zoom", transientZoom)
	}

	zoom := ClampZoom(transientZoom)
	bounds := PanBounds(source, fitScale, zoom, viewport)
	return zoom, ClampOffset(sanitizeOffset(prior), bounds), nil
}

// ComputeCropRect maps the committed zoom and offset onto a square crop
// rectangle in source pixels. sourcePixels must already be upright.
//
// The viewport-to-pixel ratio is taken along the width. The result is passed
// through ClampRect, so it is always square and inside the source.
func ComputeCropRect(sourcePixels, viewport types.Size, fitScale, zoom float64, offset types.Offset) (types.CropRect, error) {
	if err := validateSize("source", sourcePixels); err != nil {
		return types.CropRect{}, err
	}
	if err := validateSize("viewport", viewport); err != nil {
		return types.CropRect{}, err
	}
	if err := validateScale("fit scale", fitScale); err != nil {
		return types.CropRect{}, err
	}
	if err := validateScale("zoom", zoom); err != nil {
		return types.CropRect{}, err
	}
	offset = sanitizeOffset(offset)

	pixelScaler := sourcePixels.Width / viewport.Width
	side := (viewport.Width * pixelScaler) / zoom

	initialX := (sourcePixels.Width - side) / 2
	initialY := (sourcePixels.Height - side) / 2

	rect := types.CropRect{
		X:      initialX - (offset.DX*pixelScaler)/zoom,
		Y:      initialY - (offset.DY*pixelScaler)/zoom,
		Width:  side,
		Height: side,
	}
	return ClampRect(rect, sourcePixels), nil
}

// ClampRect fits a square rectangle inside the source bounds. A side longer
// than the shorter source dimension shrinks around the rectangle's center;
// the rectangle is then translated back inside the image.
func ClampRect(r types.CropRect, source types.Size) types.CropRect {
	side := math.Min(r.Width, r.Height)
	side = math.Min(side, math.Min(source.Width, source.Height))
	if side < 0 {
		side = 0
	}

	cx, cy := r.Center()
	return types.CropRect{
		X:      clamp(cx-side/2, 0, source.Width-side),
		Y:      clamp(cy-side/2, 0, source.Height-side),
		Width:  side,
		Height: side,
	}
}

// FramingForRect returns the zoom and offset for which ComputeCropRect yields
// rect, ignoring clamping. The result should be passed through CommitZoom.
func FramingForRect(rect types.CropRect, sourcePixels, viewport types.Size) (float64, types.Offset, error) {
	if err := validateSize("source", sourcePixels); err != nil {
		return 0, types.Offset{}, err
	}
	if err := validateSize("viewport", viewport); err != nil {
		return 0, types.Offset{}, err
	}
	if err := validateScale("crop side", rect.Width); err != nil {
		return 0, types.Offset{}, err
	}

	pixelScaler := sourcePixels.Width / viewport.Width
	zoom := sourcePixels.Width / rect.Width

	initialX := (sourcePixels.Width - rect.Width) / 2
	initialY := (sourcePixels.Height - rect.Width) / 2

	return zoom, types.Offset{
		DX: (initialX - rect.X) * zoom / pixelScaler,
		DY: (initialY - rect.Y) * zoom / pixelScaler,
	}, nil
}

func sanitizeOffset(o types.Offset) types.Offset {
	if math.IsNaN(o.DX) {
		o.DX = 0
	}
	if math.IsNaN(o.DY) {
		o.DY = 0
	}
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
