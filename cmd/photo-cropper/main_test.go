package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/photo-cropper/pkg/session"
	"github.com/menta2k/photo-cropper/pkg/types"
)

func TestCheckInput(t *testing.T) {
	assert.NoError(t, checkInput("me.jpg"))
	assert.NoError(t, checkInput("photos/me.WEBP"))
	assert.NoError(t, checkInput("https://example.com/avatar"))

	assert.Error(t, checkInput("notes.txt"))
	assert.Error(t, checkInput("animation.gif"))
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.json")
	want := summary{
		Input:  "me.jpg",
		Source: types.Size{Width: 1000, Height: 1000},
		State:  session.State{Zoom: 2, Offset: types.Offset{DX: 50}},
		Rect:   types.CropRect{X: 166, Y: 250, Width: 500, Height: 500},
		Output: "out/me.png",
	}
	require.NoError(t, writeSummary(path, want))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got summary
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestWriteSummaryReportsFailure(t *testing.T) {
	err := writeSummary(filepath.Join(t.TempDir(), "missing", "me.json"), summary{})
	assert.Error(t, err)
}
