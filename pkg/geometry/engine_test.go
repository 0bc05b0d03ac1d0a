package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/photo-cropper/pkg/types"
)

const eps = 1e-9

func TestFitScale(t *testing.T) {
	tests := []struct {
		name     string
		source   types.Size
		viewport types.Size
		expected float64
	}{
		{"landscape in square", types.Size{Width: 4000, Height: 3000}, types.Size{Width: 390, Height: 390}, 390.0 / 4000},
		{"portrait in square", types.Size{Width: 3000, Height: 4000}, types.Size{Width: 390, Height: 390}, 390.0 / 4000},
		{"square in square", types.Size{Width: 1000, Height: 1000}, types.Size{Width: 300, Height: 300}, 0.3},
		{"square in tall", types.Size{Width: 1000, Height: 1000}, types.Size{Width: 390, Height: 844}, 0.39},
		{"wide in tall", types.Size{Width: 1600, Height: 900}, types.Size{Width: 390, Height: 844}, 390.0 / 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, err := FitScale(tt.source, tt.viewport)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, scale, eps)
		})
	}
}

func TestFitScaleSpansConstrainedAxis(t *testing.T) {
	sources := []types.Size{{Width: 4000, Height: 3000}, {Width: 3000, Height: 4000}, {Width: 1, Height: 5000}, {Width: 640, Height: 480}}
	viewports := []types.Size{{Width: 390, Height: 390}, {Width: 390, Height: 844}, {Width: 1024, Height: 768}}

	for _, src := range sources {
		for _, vp := range viewports {
			scale, err := FitScale(src, vp)
			require.NoError(t, err)

			if src.AspectRatio() >= vp.AspectRatio() {
				assert.GreaterOrEqual(t, scale*src.Width+eps, vp.Width)
			} else {
				assert.GreaterOrEqual(t, scale*src.Height+eps, vp.Height)
			}
		}
	}
}

func TestFitScaleInvalidDimension(t *testing.T) {
	bad := []types.Size{{Width: 0, Height: 10}, {Width: 10, Height: 0}, {Width: -1, Height: 10}, {Width: math.NaN(), Height: 10}}
	for _, s := range bad {
		_, err := FitScale(s, types.Size{Width: 100, Height: 100})
		assert.ErrorIs(t, err, ErrInvalidDimension)

		_, err = FitScale(types.Size{Width: 100, Height: 100}, s)
		assert.ErrorIs(t, err, ErrInvalidDimension)
	}
}

func TestUprightSize(t *testing.T) {
	stored := types.Size{Width: 4000, Height: 3000}
	for o := 0; o <= 4; o++ {
		assert.Equal(t, stored, UprightSize(stored, o))
	}
	for o := 5; o <= 8; o++ {
		assert.Equal(t, types.Size{Width: 3000, Height: 4000}, UprightSize(stored, o))
	}
}

func TestApplyDeltas(t *testing.T) {
	assert.InDelta(t, 6.0, ApplyZoomDelta(3, 2), eps)
	assert.InDelta(t, 0.5, ApplyZoomDelta(1, 0.5), eps)

	got := ApplyPanDelta(types.Offset{DX: 10, DY: -5}, types.Offset{DX: 300, DY: -400})
	assert.Equal(t, types.Offset{DX: 310, DY: -405}, got)
}

func TestClampZoomInclusive(t *testing.T) {
	assert.Equal(t, 1.0, ClampZoom(1.0))
	assert.Equal(t, 4.0, ClampZoom(4.0))
	assert.Equal(t, 4.0, ClampZoom(5.0))
	assert.Equal(t, 1.0, ClampZoom(0.3))
	assert.Equal(t, 2.5, ClampZoom(2.5))
}

func TestPanBounds(t *testing.T) {
	source := types.Size{Width: 4000, Height: 3000}
	viewport := types.Size{Width: 390, Height: 390}
	fit, err := FitScale(source, viewport)
	require.NoError(t, err)

	// zoom 1: 390x292.5 on screen, nothing to pan
	b := PanBounds(source, fit, 1, viewport)
	assert.InDelta(t, 0.0, b.DX, 1e-9)
	assert.Zero(t, b.DY)

	// zoom 2: 780x585 on screen
	b = PanBounds(source, fit, 2, viewport)
	assert.InDelta(t, 195.0, b.DX, eps)
	assert.InDelta(t, 97.5, b.DY, eps)
}

func TestPanBoundsProperty(t *testing.T) {
	source := types.Size{Width: 1200, Height: 3400}
	viewport := types.Size{Width: 390, Height: 390}
	fit, err := FitScale(source, viewport)
	require.NoError(t, err)

	for zoom := MinZoom; zoom <= MaxZoom; zoom += 0.25 {
		b := PanBounds(source, fit, zoom, viewport)
		w := source.Width * fit * zoom
		h := source.Height * fit * zoom

		if w <= viewport.Width {
			assert.Zero(t, b.DX, "zoom %g", zoom)
		} else {
			assert.InDelta(t, (w-viewport.Width)/2, b.DX, eps)
		}
		if h <= viewport.Height {
			assert.Zero(t, b.DY, "zoom %g", zoom)
		} else {
			assert.InDelta(t, (h-viewport.Height)/2, b.DY, eps)
		}

		_, off, err := CommitZoom(zoom, source, fit, viewport, types.Offset{DX: 1e6, DY: -1e6})
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(off.DX), b.DX+eps)
		assert.LessOrEqual(t, math.Abs(off.DY), b.DY+eps)
	}
}

func TestClampOffsetSignPreserving(t *testing.T) {
	bounds := types.Offset{DX: 50, DY: 20}

	assert.Equal(t, types.Offset{DX: 50, DY: -20}, ClampOffset(types.Offset{DX: 80, DY: -80}, bounds))
	assert.Equal(t, types.Offset{DX: -50, DY: 20}, ClampOffset(types.Offset{DX: -80, DY: 80}, bounds))
	assert.Equal(t, types.Offset{DX: 10, DY: -5}, ClampOffset(types.Offset{DX: 10, DY: -5}, bounds))
	assert.Equal(t, types.Offset{}, ClampOffset(types.Offset{DX: 10, DY: -5}, types.Offset{}))
}

func TestCommitZoom(t *testing.T) {
	source := types.Size{Width: 1000, Height: 1000}
	viewport := types.Size{Width: 300, Height: 300}
	fit := 0.3

	t.Run("overshoot clamps to max", func(t *testing.T) {
		zoom, off, err := CommitZoom(5, source, fit, viewport, types.Offset{DX: 1000, DY: -1000})
		require.NoError(t, err)
		assert.Equal(t, 4.0, zoom)
		// 1200pt on screen, bound 450
		assert.InDelta(t, 450.0, off.DX, eps)
		assert.InDelta(t, -450.0, off.DY, eps)
	})

	t.Run("undershoot clamps to min and recenters", func(t *testing.T) {
		zoom, off, err := CommitZoom(0.4, source, fit, viewport, types.Offset{DX: 30, DY: 30})
		require.NoError(t, err)
		assert.Equal(t, 1.0, zoom)
		assert.Equal(t, types.Offset{}, off)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		zoom, _, err := CommitZoom(1, source, fit, viewport, types.Offset{})
		require.NoError(t, err)
		assert.Equal(t, 1.0, zoom)

		zoom, _, err = CommitZoom(4, source, fit, viewport, types.Offset{})
		require.NoError(t, err)
		assert.Equal(t, 4.0, zoom)
	})

	t.Run("idempotent", func(t *testing.T) {
		z1, o1, err := CommitZoom(3.7, source, fit, viewport, types.Offset{DX: -999, DY: 12})
		require.NoError(t, err)
		z2, o2, err := CommitZoom(z1, source, fit, viewport, o1)
		require.NoError(t, err)
		assert.Equal(t, z1, z2)
		assert.Equal(t, o1, o2)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, _, err := CommitZoom(2, types.Size{}, fit, viewport, types.Offset{})
		assert.ErrorIs(t, err, ErrInvalidDimension)

		_, _, err = CommitZoom(2, source, 0, viewport, types.Offset{})
		assert.ErrorIs(t, err, ErrInvalidDimension)

		_, _, err = CommitZoom(math.NaN(), source, fit, viewport, types.Offset{})
		assert.ErrorIs(t, err, ErrInvalidDimension)
	})
}

func TestComputeCropRectCentered(t *testing.T) {
	sources := []types.Size{{Width: 1000, Height: 1000}, {Width: 4000, Height: 3000}, {Width: 3000, Height: 4000}}
	viewport := types.Size{Width: 390, Height: 390}

	for _, src := range sources {
		fit, err := FitScale(src, viewport)
		require.NoError(t, err)

		rect, err := ComputeCropRect(src, viewport, fit, 1, types.Offset{})
		require.NoError(t, err)

		cx, cy := rect.Center()
		assert.InDelta(t, src.Width/2, cx, eps)
		assert.InDelta(t, src.Height/2, cy, eps)
		assert.InDelta(t, math.Min(src.Width, src.Height), rect.Width, eps)
		assert.Equal(t, rect.Width, rect.Height)
	}
}

func TestComputeCropRectLandscapeScenario(t *testing.T) {
	source := types.Size{Width: 4000, Height: 3000}
	viewport := types.Size{Width: 390, Height: 390}

	fit, err := FitScale(source, viewport)
	require.NoError(t, err)
	assert.InDelta(t, 0.0975, fit, eps)

	rect, err := ComputeCropRect(source, viewport, fit, 1, types.Offset{})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, rect.X, eps)
	assert.InDelta(t, 0.0, rect.Y, eps)
	assert.InDelta(t, 3000.0, rect.Width, eps)
	assert.InDelta(t, 3000.0, rect.Height, eps)
}

func TestComputeCropRectZoomedPan(t *testing.T) {
	source := types.Size{Width: 1000, Height: 1000}
	viewport := types.Size{Width: 300, Height: 300}

	rect, err := ComputeCropRect(source, viewport, 0.3, 2, types.Offset{DX: 50})
	require.NoError(t, err)

	assert.InDelta(t, 500.0, rect.Width, eps)
	assert.InDelta(t, 250.0-(50*1000.0/300)/2, rect.X, eps)
	assert.InDelta(t, 166.6667, rect.X, 1e-3)
	assert.InDelta(t, 250.0, rect.Y, eps)
}

func TestComputeCropRectPanDirection(t *testing.T) {
	source := types.Size{Width: 1000, Height: 1000}
	viewport := types.Size{Width: 300, Height: 300}

	right, err := ComputeCropRect(source, viewport, 0.3, 2, types.Offset{DX: 40, DY: 40})
	require.NoError(t, err)
	left, err := ComputeCropRect(source, viewport, 0.3, 2, types.Offset{DX: -40, DY: -40})
	require.NoError(t, err)

	// dragging the image right and down moves the window left and up
	assert.Less(t, right.X, left.X)
	assert.Less(t, right.Y, left.Y)
}

func TestComputeCropRectContained(t *testing.T) {
	source := types.Size{Width: 1000, Height: 700}
	viewport := types.Size{Width: 300, Height: 300}
	fit, err := FitScale(source, viewport)
	require.NoError(t, err)

	for zoom := MinZoom; zoom <= MaxZoom; zoom += 0.5 {
		for _, off := range []types.Offset{{DX: 1e4, DY: 1e4}, {DX: -1e4, DY: -1e4}, {DX: 0.1, DY: -3}} {
			rect, err := ComputeCropRect(source, viewport, fit, zoom, off)
			require.NoError(t, err)

			assert.Equal(t, rect.Width, rect.Height)
			assert.GreaterOrEqual(t, rect.X, 0.0)
			assert.GreaterOrEqual(t, rect.Y, 0.0)
			assert.LessOrEqual(t, rect.X+rect.Width, source.Width+eps)
			assert.LessOrEqual(t, rect.Y+rect.Height, source.Height+eps)
		}
	}
}

func TestComputeCropRectInvalid(t *testing.T) {
	source := types.Size{Width: 1000, Height: 1000}
	viewport := types.Size{Width: 300, Height: 300}

	_, err := ComputeCropRect(types.Size{Width: 0, Height: 10}, viewport, 0.3, 1, types.Offset{})
	assert.True(t, errors.Is(err, ErrInvalidDimension))

	_, err = ComputeCropRect(source, types.Size{Width: 300, Height: -1}, 0.3, 1, types.Offset{})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = ComputeCropRect(source, viewport, 0.3, 0, types.Offset{})
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = ComputeCropRect(source, viewport, -0.3, 1, types.Offset{})
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestClampRectAbsorbsDrift(t *testing.T) {
	source := types.Size{Width: 800, Height: 600}

	r := ClampRect(types.CropRect{X: -0.0000001, Y: 200.0000001, Width: 400, Height: 400}, source)
	assert.Equal(t, 0.0, r.X)
	assert.Equal(t, 200.0, r.Y)
	assert.Equal(t, 400.0, r.Width)
}

func TestFramingForRectInvertsComputeCropRect(t *testing.T) {
	source := types.Size{Width: 1000, Height: 1000}
	viewport := types.Size{Width: 300, Height: 300}
	fit := 0.3

	want := types.CropRect{X: 120, Y: 300, Width: 400, Height: 400}
	zoom, off, err := FramingForRect(want, source, viewport)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, zoom, eps)

	got, err := ComputeCropRect(source, viewport, fit, zoom, off)
	require.NoError(t, err)
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
	assert.InDelta(t, want.Width, got.Width, 1e-6)

	_, _, err = FramingForRect(types.CropRect{}, source, viewport)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func BenchmarkComputeCropRect(b *testing.B) {
	source := types.Size{Width: 4032, Height: 3024}
	viewport := types.Size{Width: 390, Height: 390}
	fit, _ := FitScale(source, viewport)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeCropRect(source, viewport, fit, 2.2, types.Offset{DX: 12, DY: -40})
	}
}

func BenchmarkCommitZoom(b *testing.B) {
	source := types.Size{Width: 4032, Height: 3024}
	viewport := types.Size{Width: 390, Height: 390}
	fit, _ := FitScale(source, viewport)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CommitZoom(4.6, source, fit, viewport, types.Offset{DX: 500, DY: -500})
	}
}
