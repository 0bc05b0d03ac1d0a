// Package photocropper turns pan and zoom gestures over a picked photo into a
// square profile picture.
//
// Basic usage:
//
//	pc := photocropper.New()
//
//	src, err := pc.LoadSource("photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := pc.StartSession(context.Background(), src)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// feed gestures from the UI
//	_ = sess.Zoom(1.5)
//	_ = sess.End(session.Zoom)
//
//	result, err := pc.Crop(src, sess)
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = pc.SaveImage(result.Image, "avatar.png")
//
// The package ties together the components under pkg/:
//
//  1. Geometry (pkg/geometry): fit scale, gesture clamping and the crop rectangle
//  2. Session (pkg/session): the gesture state machine owning the committed framing
//  3. Processing (pkg/processing): loading, orientation normalization and encoding
//  4. Cropper (pkg/cropper): cutting the rectangle out of the pixels
//  5. Profile (pkg/profile): persisting the picked photo with its last crop
//  6. Suggest (pkg/suggest): optional initial framing on the subject
package photocropper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/menta2k/photo-cropper/pkg/cropper"
	"github.com/menta2k/photo-cropper/pkg/geometry"
	"github.com/menta2k/photo-cropper/pkg/processing"
	"github.com/menta2k/photo-cropper/pkg/profile"
	"github.com/menta2k/photo-cropper/pkg/session"
	"github.com/menta2k/photo-cropper/pkg/suggest"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// Version of the photo cropper library
const Version = "1.0.0"

// ErrNoImage is returned when a profile has no picked photo yet
var ErrNoImage = errors.New("profile has no image")

// Options configures a PhotoCropper
type Options struct {
	// Viewport is the on-screen crop area in points
	Viewport types.Size
	Crop     cropper.CropConfig
	Format   string
	Quality  int
	Lossless bool
	// Suggester frames fresh sessions; nil opens them centered at zoom 1
	Suggester suggest.Suggester
}

// DefaultOptions returns a 390pt viewport producing 512px PNGs
func DefaultOptions() Options {
	return Options{
		Viewport: types.Size{Width: 390, Height: 390},
		Crop:     cropper.DefaultConfig(),
		Format:   "png",
		Quality:  90,
	}
}

// PhotoCropper provides a high-level interface over the crop pipeline
type PhotoCropper struct {
	processor *processing.Processor
	cropper   *cropper.SquareCropper
	opts      Options
}

// New creates a PhotoCropper with default options
func New() *PhotoCropper {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a PhotoCropper with custom options
func NewWithOptions(opts Options) *PhotoCropper {
	if opts.Format == "" {
		opts.Format = "png"
	}
	return &PhotoCropper{
		processor: processing.NewProcessor(),
		cropper:   cropper.NewWithConfig(opts.Crop),
		opts:      opts,
	}
}

// Options returns the options in use
func (pc *PhotoCropper) Options() Options {
	return pc.opts
}

// Processor exposes the underlying image processor
func (pc *PhotoCropper) Processor() *processing.Processor {
	return pc.processor
}

// LoadSource loads an image from a file path or http(s) URL
func (pc *PhotoCropper) LoadSource(input string) (*processing.Source, error) {
	return pc.processor.LoadSourceSmart(input)
}

// DecodeSource decodes raw image bytes
func (pc *PhotoCropper) DecodeSource(data []byte) (*processing.Source, error) {
	return pc.processor.DecodeSource(data)
}

// StartSession opens a fresh session on src. When a suggester is configured
// the session starts on its proposal; a failed suggestion falls back to the
// centered default.
func (pc *PhotoCropper) StartSession(ctx context.Context, src *processing.Source) (*session.Session, error) {
	if pc.opts.Suggester != nil {
		sess, err := suggest.Seed(ctx, pc.opts.Suggester, src, pc.opts.Viewport)
		if err == nil {
			return sess, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("suggestion unavailable, starting centered: %v", err)
	}
	return session.New(src.Size, pc.opts.Viewport)
}

// OpenProfile decodes the photo stored in p and opens a session on it. The
// framing of the last saved crop is restored when there is one.
func (pc *PhotoCropper) OpenProfile(ctx context.Context, p *profile.ProfileImage) (*processing.Source, *session.Session, error) {
	if !p.HasImage() {
		return nil, nil, ErrNoImage
	}
	src, err := pc.processor.DecodeSource(p.ImageData)
	if err != nil {
		return nil, nil, err
	}

	if st, ok := p.RestoreState(); ok {
		sess, err := session.Restore(src.Size, pc.opts.Viewport, st)
		if err != nil {
			return nil, nil, err
		}
		return src, sess, nil
	}

	sess, err := pc.StartSession(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return src, sess, nil
}

// Pick replaces the photo of p with data and opens a fresh session on it.
// p is left untouched when data cannot be decoded.
func (pc *PhotoCropper) Pick(ctx context.Context, store *profile.Store, p *profile.ProfileImage, data []byte) (*processing.Source, *session.Session, error) {
	src, err := pc.processor.DecodeSource(data)
	if err != nil {
		return nil, nil, err
	}
	return pc.PickSource(ctx, store, p, src)
}

// PickSource is Pick for a source that was already decoded, for example by
// LoadSource. The pixels are used as they are.
func (pc *PhotoCropper) PickSource(ctx context.Context, store *profile.Store, p *profile.ProfileImage, src *processing.Source) (*processing.Source, *session.Session, error) {
	if len(src.Data) == 0 {
		return nil, nil, fmt.Errorf("source has no encoded data: %w", geometry.ErrSourceImageUnavailable)
	}

	next := *p
	next.SetOriginal(src.Data)
	if store != nil {
		if err := store.Save(ctx, &next); err != nil {
			return nil, nil, err
		}
	}
	*p = next

	sess, err := pc.StartSession(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return src, sess, nil
}

// Crop cuts the committed framing of sess out of src
func (pc *PhotoCropper) Crop(src *processing.Source, sess *session.Session) (cropper.CropResult, error) {
	rect, err := sess.CropRect()
	if err != nil {
		return cropper.CropResult{}, err
	}
	return pc.cropper.Crop(src.Image, rect)
}

// Preview returns a quick thumbnail of the committed framing of sess
func (pc *PhotoCropper) Preview(src *processing.Source, sess *session.Session, maxSide int) (image.Image, error) {
	rect, err := sess.CropRect()
	if err != nil {
		return nil, err
	}
	return pc.cropper.Preview(src.Image, rect, maxSide)
}

// Save crops, encodes and records the result in p, then closes the session.
// store may be nil to keep the profile in memory only. p is left untouched
// when any step fails.
func (pc *PhotoCropper) Save(ctx context.Context, store *profile.Store, p *profile.ProfileImage, src *processing.Source, sess *session.Session) (cropper.CropResult, error) {
	var result cropper.CropResult
	err := sess.Save(func(rect types.CropRect, st session.State) error {
		res, err := pc.cropper.Crop(src.Image, rect)
		if err != nil {
			return err
		}
		data, err := pc.processor.EncodeToBytes(res.Image, pc.opts.Format, pc.opts.Quality, pc.opts.Lossless)
		if err != nil {
			return err
		}

		next := *p
		next.SaveCrop(data, pc.opts.Format, st)
		if store != nil {
			if err := store.Save(ctx, &next); err != nil {
				return err
			}
		}
		*p = next
		result = res
		return nil
	})
	if err != nil {
		return cropper.CropResult{}, fmt.Errorf("failed to save crop: %w", err)
	}
	return result, nil
}

// SaveImage writes img to path in the configured output format
func (pc *PhotoCropper) SaveImage(img image.Image, path string) error {
	return pc.processor.SaveImage(img, path, pc.opts.Format, pc.opts.Quality, pc.opts.Lossless)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
