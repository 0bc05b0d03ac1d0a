package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	photocropper "github.com/menta2k/photo-cropper"
	"github.com/menta2k/photo-cropper/internal/config"
	"github.com/menta2k/photo-cropper/internal/utils"
	"github.com/menta2k/photo-cropper/pkg/cropper"
	"github.com/menta2k/photo-cropper/pkg/ollama"
	"github.com/menta2k/photo-cropper/pkg/processing"
	"github.com/menta2k/photo-cropper/pkg/profile"
	"github.com/menta2k/photo-cropper/pkg/session"
	"github.com/menta2k/photo-cropper/pkg/suggest"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// summary is written next to the crop
type summary struct {
	Input     string         `json:"input"`
	ProfileID string         `json:"profile_id,omitempty"`
	Source    types.Size     `json:"source"`
	Viewport  types.Size     `json:"viewport"`
	FitScale  float64        `json:"fit_scale"`
	State     session.State  `json:"state"`
	Rect      types.CropRect `json:"rect"`
	Output    string         `json:"output"`
}

func main() {
	var configPath, envFile, in, outDir, ext, backend, gestures, dbPath, profileID string
	var quality, size, preview int
	var lossless, debug bool
	var zoom, dx, dy, vpW, vpH float64

	flag.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+" when present)")
	flag.StringVar(&envFile, "env", ".env", "env file with PHOTO_CROPPER_* overrides")
	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "", "output directory")

	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	flag.IntVar(&size, "size", -1, "output side in pixels, 0 keeps the cropped size")
	flag.IntVar(&preview, "preview", 0, "also write a thumbnail preview of this side (px)")

	flag.Float64Var(&vpW, "vpw", 0, "viewport width in points")
	flag.Float64Var(&vpH, "vph", 0, "viewport height in points")
	flag.Float64Var(&zoom, "zoom", 0, "committed zoom (1..4), overrides restore and suggestion")
	flag.Float64Var(&dx, "dx", 0, "committed horizontal offset in points (with -zoom)")
	flag.Float64Var(&dy, "dy", 0, "committed vertical offset in points (with -zoom)")
	flag.StringVar(&gestures, "gestures", "", "JSON file with gesture events to replay")

	flag.StringVar(&backend, "suggest", "", "initial framing: none|saliency|ollama")
	flag.StringVar(&dbPath, "db", "", "SQLite profile database")
	flag.StringVar(&profileID, "profile", "", "profile ID to restore or update (requires -db)")
	flag.BoolVar(&debug, "debug", false, "write a debug overlay of the crop")

	flag.Parse()

	cfg, err := loadConfig(configPath, envFile)
	if err != nil {
		log.Fatal(err)
	}

	// flags win over config and environment
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ext != "" {
		cfg.Crop.Format = strings.ToLower(ext)
	}
	if quality > 0 {
		cfg.Crop.Quality = quality
	}
	if lossless {
		cfg.Crop.Lossless = true
	}
	if size >= 0 {
		cfg.Crop.OutputSize = size
	}
	if vpW > 0 {
		cfg.Viewport.Width = vpW
	}
	if vpH > 0 {
		cfg.Viewport.Height = vpH
	}
	if backend != "" {
		cfg.Suggest.Backend = backend
	}
	if dbPath != "" {
		cfg.Store.DatabasePath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if in == "" && profileID == "" {
		log.Fatalf("usage: %s -in input.jpg|URL [-profile id -db profiles.db] [-zoom 1.5 -dx 0 -dy 0] [-gestures events.json] [-suggest none|saliency|ollama] [-out outdir] [-ext jpg|png|webp]", filepath.Base(os.Args[0]))
	}
	if profileID != "" && cfg.Store.DatabasePath == "" {
		log.Fatal("-profile requires -db or store.database_path")
	}
	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		log.Fatal(err)
	}

	suggester, err := newSuggester(cfg.Suggest)
	if err != nil {
		log.Fatal(err)
	}

	cropConfig := cropper.DefaultConfig()
	cropConfig.OutputSize = cfg.Crop.OutputSize
	cropConfig.AllowUpscaling = cfg.Crop.AllowUpscaling

	pc := photocropper.NewWithOptions(photocropper.Options{
		Viewport:  types.Size{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		Crop:      cropConfig,
		Format:    cfg.Crop.Format,
		Quality:   cfg.Crop.Quality,
		Lossless:  cfg.Crop.Lossless,
		Suggester: suggester,
	})

	var store *profile.Store
	if cfg.Store.DatabasePath != "" {
		store, err = profile.Open(cfg.Store.DatabasePath)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
	}

	ctx := context.Background()
	p, src, sess, err := openSession(ctx, pc, store, in, profileID)
	if err != nil {
		log.Fatal(err)
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "zoom" {
			sess, err = session.Restore(src.Size, pc.Options().Viewport, session.State{Zoom: zoom, Offset: types.Offset{DX: dx, DY: dy}})
		}
	})
	if err != nil {
		log.Fatal(err)
	}

	if gestures != "" {
		data, err := os.ReadFile(gestures)
		if err != nil {
			log.Fatal(err)
		}
		events, err := session.ParseEvents(data)
		if err != nil {
			log.Fatal(err)
		}
		if err := sess.Replay(events); err != nil {
			log.Fatalf("gesture replay failed: %v", err)
		}
		log.Printf("replayed %d gesture events, phase=%s", len(events), sess.Phase())
	}

	rect, err := sess.CropRect()
	if err != nil {
		log.Fatal(err)
	}
	st := sess.Committed()
	log.Printf("source=%.0fx%.0f orientation=%d fit=%.4f zoom=%.3f offset=%.1f,%.1f bounds=±%.1f,±%.1f -> crop=%.1f,%.1f side=%.1f",
		src.Size.Width, src.Size.Height, src.Orientation, sess.FitScale(), st.Zoom, st.Offset.DX, st.Offset.DY,
		sess.PanBounds().DX, sess.PanBounds().DY, rect.X, rect.Y, rect.Width)

	name := in
	if name == "" {
		name = p.ID
	}

	if debug {
		inset := cfg.Viewport.MaskInset / cfg.Viewport.Width
		overlay := pc.Processor().CreateDebugOverlay(src.Image, rect, inset)
		dbgPath := utils.GenerateOutputFilename(name, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, "_debug", "png")
		if err := pc.Processor().SaveImage(overlay, dbgPath, "png", 0, false); err != nil {
			log.Printf("debug overlay save failed: %v", err)
		} else {
			log.Printf("wrote %s", dbgPath)
		}
	}

	if preview > 0 {
		thumb, err := pc.Preview(src, sess, preview)
		if err != nil {
			log.Printf("preview failed: %v", err)
		} else {
			previewPath := utils.GenerateOutputFilename(name, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, "_preview", cfg.Crop.Format)
			if err := pc.SaveImage(thumb, previewPath); err != nil {
				log.Printf("preview save failed: %v", err)
			} else {
				log.Printf("wrote %s", previewPath)
			}
		}
	}

	start := time.Now()
	result, err := pc.Save(ctx, store, p, src, sess)
	if err != nil {
		log.Fatal(err)
	}

	outPath := utils.GenerateOutputFilename(name, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, "", cfg.Crop.Format)
	if err := os.WriteFile(outPath, p.CroppedImageData, 0o644); err != nil {
		log.Fatalf("save %s failed: %v", outPath, err)
	}
	log.Printf("wrote %s (%dx%d, %s) in %v", outPath, result.Image.Bounds().Dx(), result.Image.Bounds().Dy(),
		utils.FormatFileSize(int64(len(p.CroppedImageData))), time.Since(start).Round(time.Millisecond))
	if store != nil {
		log.Printf("profile %s saved to %s", p.ID, cfg.Store.DatabasePath)
	}

	summaryPath := utils.GenerateOutputFilename(name, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, "", "json")
	err = writeSummary(summaryPath, summary{
		Input:     in,
		ProfileID: p.ID,
		Source:    src.Size,
		Viewport:  sess.Viewport(),
		FitScale:  sess.FitScale(),
		State:     st,
		Rect:      rect,
		Output:    outPath,
	})
	if err != nil {
		log.Printf("summary save failed: %v", err)
	} else {
		log.Printf("wrote %s", summaryPath)
	}
}

func writeSummary(path string, s summary) error {
	js, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, js, 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

func loadConfig(path, envFile string) (*config.Config, error) {
	cfg := config.Default()
	if path == "" && utils.FileExists(config.GetConfigPath()) {
		path = config.GetConfigPath()
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Printf("loaded config from %s", path)
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSuggester(cfg config.SuggestConfig) (suggest.Suggester, error) {
	switch cfg.Backend {
	case "saliency":
		return suggest.NewSaliencySuggester(), nil
	case "ollama":
		c, err := ollama.NewClient(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return suggest.NewVisionSuggester(c, suggest.VisionOptions{
			Model:       cfg.Model,
			SendFormat:  cfg.SendFormat,
			SendSize:    cfg.SendSize,
			SendQuality: cfg.SendQuality,
			Padding:     cfg.Padding,
		}), nil
	default:
		return nil, nil
	}
}

// openSession resolves the profile to work on and opens a session for it.
// A new input replaces the profile photo, otherwise the stored one is restored.
func openSession(ctx context.Context, pc *photocropper.PhotoCropper, store *profile.Store, in, profileID string) (*profile.ProfileImage, *processing.Source, *session.Session, error) {
	var p *profile.ProfileImage
	var err error
	switch {
	case profileID != "":
		p, err = store.Get(ctx, profileID)
		if errors.Is(err, profile.ErrNotFound) && in != "" {
			p, err = &profile.ProfileImage{ID: profileID}, nil
		}
	case store != nil:
		p, err = store.Create(ctx)
	default:
		p = &profile.ProfileImage{}
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if in == "" {
		src, sess, err := pc.OpenProfile(ctx, p)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("restored profile %s (phase=%s)", p.ID, sess.Phase())
		return p, src, sess, nil
	}

	if err := checkInput(in); err != nil {
		return nil, nil, nil, err
	}
	loaded, err := pc.LoadSource(in)
	if err != nil {
		return nil, nil, nil, err
	}
	src, sess, err := pc.PickSource(ctx, store, p, loaded)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, src, sess, nil
}

// checkInput rejects local files the decoder cannot read before touching them.
// URLs are checked by their content type after download.
func checkInput(in string) error {
	if utils.IsURL(in) || utils.IsImageFile(in) {
		return nil
	}
	return fmt.Errorf("%s: not a jpg, png or webp file", in)
}
