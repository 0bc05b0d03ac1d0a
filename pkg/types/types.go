package types

import (
	"image"
	"math"
)

// Size is a width/height pair in pixels or viewport points
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are strictly positive
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// AspectRatio returns width divided by height
func (s Size) AspectRatio() float64 {
	return s.Width / s.Height
}

// Scale returns the size multiplied by f on both axes
func (s Size) Scale(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// SizeOf returns the pixel size of an image's bounds
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Offset is a signed pan translation in viewport points
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Add returns the componentwise sum
func (o Offset) Add(other Offset) Offset {
	return Offset{DX: o.DX + other.DX, DY: o.DY + other.DY}
}

// IsZero reports whether both components are zero
func (o Offset) IsZero() bool {
	return o.DX == 0 && o.DY == 0
}

// CropRect is a crop rectangle in source-image pixel coordinates
type CropRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the rectangle
func (r CropRect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Rectangle rounds the rectangle to whole pixels
func (r CropRect) Rectangle() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	return image.Rect(x0, y0, x0+int(math.Round(r.Width)), y0+int(math.Round(r.Height)))
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Primary represents the primary subject detected in an image
type Primary struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Cx         float64 `json:"cx"`
	Cy         float64 `json:"cy"`
}

// AnalysisResult contains the complete analysis result from the vision model
type AnalysisResult struct {
	Primary     Primary  `json:"primary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
