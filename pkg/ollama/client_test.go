package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:11434/api/chat")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.timeout)

	_, err = NewClient("localhost")
	assert.Error(t, err)
}

func TestSanitizeModelJSON(t *testing.T) {
	raw := "```json\n{\n  // subject\n  \"primary\": {\"label\": \"face\", \"box\": {\"x\": 0.1, \"y\": 0.2, \"w\": 0.3, \"h\": 0.4,},},\n  /* tags */ \"tags\": [\"a\",]\n}\n```"

	got := sanitizeModelJSON(raw)
	assert.Equal(t, `{`, got[:1])
	assert.NotContains(t, got, "//")
	assert.NotContains(t, got, "/*")
	assert.NotContains(t, got, ",}")

	result := parseAnalysisResult(raw)
	assert.Equal(t, "face", result.Primary.Label)
	assert.InDelta(t, 0.3, result.Primary.Box.W, 1e-9)
	assert.Equal(t, []string{"a"}, result.Tags)
}

func TestParseAnalysisResultFallback(t *testing.T) {
	result := parseAnalysisResult("I see a person smiling.")
	assert.Equal(t, "none", result.Primary.Label)

	result = parseAnalysisResult(`{"primary": {"label": 3}}`)
	assert.Equal(t, "none", result.Primary.Label)
}
