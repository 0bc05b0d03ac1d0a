package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// DefaultTimeout bounds a single model call when the context has no deadline
const DefaultTimeout = 120 * time.Second

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	timeout time.Duration
	options map[string]any
}

// NewClient creates a new Ollama client. The path of ollamaURL is ignored,
// so both http://host:11434 and http://host:11434/api/chat work.
func NewClient(ollamaURL string) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: scheme and host required", ollamaURL)
	}

	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		timeout: DefaultTimeout,
		options: map[string]any{
			"temperature": 0.2,
			"num_ctx":     4096,
		},
	}, nil
}

// SetTimeout overrides DefaultTimeout
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SimpleQuery performs a simple query with an image without expecting JSON
func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return c.chat(ctx, model, prompt, imgB64, nil)
}

// AnalyzeImage asks the model to locate the subject and parses its JSON answer
func (c *Client) AnalyzeImage(ctx context.Context, model, prompt, imgB64 string) (*types.AnalysisResult, error) {
	content, err := c.chat(ctx, model, prompt, imgB64, c.options)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}
	return parseAnalysisResult(content), nil
}

func (c *Client) chat(ctx context.Context, model, prompt, imgB64 string, options map[string]any) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	imgBytes, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(imgBytes)},
			},
		},
		Stream:  &stream,
		Options: options,
	}

	var content strings.Builder
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	return content.String(), nil
}

// noSubject is what the model path reports when the answer cannot be used
func noSubject(description string) *types.AnalysisResult {
	return &types.AnalysisResult{
		Primary: types.Primary{
			Label: "none",
			Box:   types.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			Cx:    0.5,
			Cy:    0.5,
		},
		Description: description,
	}
}

// parseAnalysisResult parses the JSON response from the vision model.
// Unusable answers become a "none" result rather than an error.
func parseAnalysisResult(raw string) *types.AnalysisResult {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return noSubject("model returned non-JSON response")
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return noSubject("failed to parse model response")
	}
	return &result
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON strips code fences, comments and trailing commas and
// keeps only the outermost object
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
