package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/photo-cropper/pkg/geometry"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// Source is a decoded image whose pixels are already upright
type Source struct {
	Image image.Image
	// Size is the upright pixel size, the input for every crop computation
	Size types.Size
	// StoredSize is the pixel size as encoded, before orientation was applied
	StoredSize types.Size
	// Orientation is the EXIF orientation (1 when absent), 0 when the decoder
	// rotated the pixels by a tag goexif could not read
	Orientation int
	Format      string
	Data        []byte
}

// Processor handles image loading, normalization and encoding
type Processor struct {
	client *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadSourceFromURL downloads and decodes an image from a URL
func (p *Processor) LoadSourceFromURL(imageURL string) (*Source, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Photo-Cropper/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return p.DecodeSource(data)
}

// LoadSource reads and decodes an image file
func (p *Processor) LoadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.DecodeSource(data)
}

// LoadSourceSmart loads an image from either a file path or URL
func (p *Processor) LoadSourceSmart(source string) (*Source, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadSourceFromURL(source)
	}
	return p.LoadSource(source)
}

// DecodeSource decodes image bytes and rotates the pixels upright according
// to the EXIF orientation. It runs once per picked image.
func (p *Processor) DecodeSource(data []byte) (*Source, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %v: %w", err, geometry.ErrSourceImageUnavailable)
	}
	stored := types.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	orientation, tagRead := readOrientation(data)

	img, err := decodeUpright(data, format)
	if err != nil {
		return nil, err
	}

	size, orientation, err := verifyUpright(img, stored, orientation, tagRead)
	if err != nil {
		return nil, err
	}
	if !size.Valid() {
		return nil, fmt.Errorf("empty image: %w", geometry.ErrInvalidDimension)
	}

	return &Source{
		Image:       img,
		Size:        size,
		StoredSize:  stored,
		Orientation: orientation,
		Format:      format,
		Data:        data,
	}, nil
}

func decodeUpright(data []byte, format string) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	if format == "webp" {
		if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("failed to decode %s image: %v: %w", format, err, geometry.ErrSourceImageUnavailable)
}

// verifyUpright checks that the decoder applied the orientation. When goexif
// could not read the tag the decoder's own reading is trusted, and the
// returned orientation is 0 if it rotated the pixels by a quarter turn.
func verifyUpright(img image.Image, stored types.Size, orientation int, tagRead bool) (types.Size, int, error) {
	size := types.SizeOf(img)
	want := geometry.UprightSize(stored, orientation)
	if size == want {
		return size, orientation, nil
	}
	if !tagRead && size == geometry.UprightSize(stored, 6) {
		return size, 0, nil
	}
	return size, orientation, fmt.Errorf("decoded %gx%g, expected %gx%g for orientation %d: %w",
		size.Width, size.Height, want.Width, want.Height, orientation, geometry.ErrOrientationNormalizationFailed)
}

// ReadOrientation returns the EXIF orientation tag, or 1 when the data has none
func ReadOrientation(data []byte) int {
	orientation, _ := readOrientation(data)
	return orientation
}

func readOrientation(data []byte) (int, bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 1, false
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1, false
	}
	return v, true
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ErrUnsupportedFormat is returned for output formats other than jpg, png and webp
var ErrUnsupportedFormat = errors.New("unsupported output format")

// EncodeImage writes img to w in the given format
func (p *Processor) EncodeImage(w io.Writer, img image.Image, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: lossless, Quality: float32(quality)})
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "jpg", "jpeg", "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// EncodeToBytes encodes img and returns the bytes, for persisting a cropped result
func (p *Processor) EncodeToBytes(img image.Image, format string, quality int, lossless bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.EncodeImage(&buf, img, format, quality, lossless); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.EncodeImage(f, img, format, quality, lossless); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
