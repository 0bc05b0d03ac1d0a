package client

import (
	"context"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// VisionClient sends an image and a prompt to a vision model
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error)
}
