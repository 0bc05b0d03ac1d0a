package detection

import (
	"context"
	"errors"
	"strings"

	"github.com/menta2k/photo-cropper/pkg/client"
	"github.com/menta2k/photo-cropper/pkg/types"
)

// ErrNoSubject is returned when the model found nothing worth framing
var ErrNoSubject = errors.New("no subject detected")

// DefaultPrompt asks the model for the subject a profile picture should frame
const DefaultPrompt = `You locate the subject of a profile picture.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
    "cx": 0.0,
    "cy": 0.0
  },
  "description": "short neutral sentence (at most 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- Prefer a human face including hair and chin; else a pet's head; else the most salient object.
- The box should be tight around that subject.
- Description must be brief and factual. Do not guess real identities.
- If no subject is found, return {"primary":{"label":"none","confidence":0.0,"box":{"x":0,"y":0,"w":0,"h":0},"cx":0.5,"cy":0.5},"description":"","tags":[]}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// MinConfidence is the confidence below which a detection is ignored
const MinConfidence = 0.2

// Detector handles image subject detection using vision models
type Detector struct {
	client client.VisionClient
	prompt string
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client, prompt: DefaultPrompt}
}

// DetectSubject asks the model for the primary subject. Low confidence,
// "none" and degenerate boxes are reported as ErrNoSubject.
func (d *Detector) DetectSubject(ctx context.Context, model, imageB64 string) (*types.AnalysisResult, error) {
	result, err := d.client.AnalyzeImage(ctx, model, d.prompt, imageB64)
	if err != nil {
		return nil, err
	}

	result.Primary.Box = normalizeBox(result.Primary.Box)
	result.Tags = normalizeTags(result.Tags)

	if strings.EqualFold(result.Primary.Label, "none") ||
		result.Primary.Confidence < MinConfidence ||
		result.Primary.Box.W <= 0 || result.Primary.Box.H <= 0 {
		return result, ErrNoSubject
	}
	return result, nil
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox clips a box to the unit square
func normalizeBox(b types.Box) types.Box {
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.X+b.W, 0, 1) - x,
		H: clamp(b.Y+b.H, 0, 1) - y,
	}
}

// normalizeTags ensures tags are cleaned and limited to 5 entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
