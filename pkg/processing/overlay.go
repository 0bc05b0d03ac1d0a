package processing

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// DefaultMaskInset is the gap between the crop square and the circular mask,
// as a fraction of the crop side
const DefaultMaskInset = 15.0 / 390.0

// CreateDebugOverlay returns a copy of img with the crop square outlined and
// everything outside the inscribed circle dimmed, the way the picker shows it
func (p *Processor) CreateDebugOverlay(img image.Image, rect types.CropRect, insetRatio float64) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	red := color.NRGBA{255, 0, 0, 255}
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h))))
	cross := int(math.Max(4, 0.01*float64(minInt(w, h))))

	cx, cy := rect.Center()
	radius := rect.Width/2 - insetRatio*rect.Width
	dimOutsideCircle(nrgba, cx, cy, radius, 0.55)

	x0, y0, x1, y1 := rectToPixels(rect, w, h)
	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, y0+s, x0, x1, gold)
		drawHLine(nrgba, y1-1-s, x0, x1, gold)
		drawVLine(nrgba, x0+s, y0, y1, gold)
		drawVLine(nrgba, x1-1-s, y0, y1, gold)
	}

	px, py := int(cx+0.5), int(cy+0.5)
	drawHLine(nrgba, py, px-cross, px+cross, red)
	drawVLine(nrgba, px, py-cross, py+cross, red)

	return nrgba
}

func dimOutsideCircle(img *image.NRGBA, cx, cy, radius, opacity float64) {
	r2 := radius * radius
	keep := 1 - opacity
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		dy := float64(y) + 0.5 - cy
		i := y * img.Stride
		for x := 0; x < b.Dx(); x++ {
			dx := float64(x) + 0.5 - cx
			if radius <= 0 || dx*dx+dy*dy > r2 {
				img.Pix[i+0] = uint8(float64(img.Pix[i+0]) * keep)
				img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * keep)
				img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * keep)
			}
			i += 4
		}
	}
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

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func rectToPixels(r types.CropRect, w, h int) (int, int, int, int) {
	x0 := int(clamp(r.X, 0, float64(w)) + 0.5)
	y0 := int(clamp(r.Y, 0, float64(h)) + 0.5)
	x1 := int(clamp(r.X+r.Width, 0, float64(w)) + 0.5)
	y1 := int(clamp(r.Y+r.Height, 0, float64(h)) + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
