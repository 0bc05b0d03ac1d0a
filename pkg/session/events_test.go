package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventsAndReplay(t *testing.T) {
	data := []byte(`[
		{"kind": "pinch", "magnification": 1.4},
		{"kind": "zoom", "magnification": 2.5},
		{"kind": "zoom", "ended": true},
		{"kind": "pan", "translation": {"dx": 30, "dy": 0}},
		{"kind": "pan", "translation": {"dx": 80, "dy": -25}},
		{"kind": "pan", "ended": true},
		{"kind": "drag", "translation": {"dx": 500, "dy": 500}},
		{"kind": "drag", "cancelled": true}
	]`)

	events, err := ParseEvents(data)
	require.NoError(t, err)
	require.Len(t, events, 8)
	assert.Equal(t, Zoom, events[0].Kind)
	assert.Equal(t, Pan, events[6].Kind)

	s := newSession(t)
	require.NoError(t, s.Replay(events))

	assert.Equal(t, Idle, s.Phase())
	assert.InDelta(t, 2.5, s.Committed().Zoom, 1e-12)
	assert.InDelta(t, 80.0, s.Committed().Offset.DX, 1e-9)
	assert.InDelta(t, -25.0, s.Committed().Offset.DY, 1e-9)
}

func TestParseEventsUnknownKind(t *testing.T) {
	_, err := ParseEvents([]byte(`[{"kind": "rotate"}]`))
	assert.Error(t, err)
}

func TestReplayStopsAtFirstError(t *testing.T) {
	s := newSession(t)
	err := s.Replay([]Event{{Kind: Pan, Ended: true}})
	assert.ErrorIs(t, err, ErrNoActiveGesture)
	assert.Contains(t, err.Error(), "event 0")
}

func TestGestureKindText(t *testing.T) {
	b, err := Zoom.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "zoom", string(b))
	assert.Equal(t, "pan", Pan.String())
	assert.Equal(t, "gesturing", Gesturing.String())
}
