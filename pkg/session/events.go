package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/menta2k/photo-cropper/pkg/types"
)

// GestureKind identifies the gesture an event belongs to
type GestureKind int

const (
	Pan GestureKind = iota
	Zoom
)

func (k GestureKind) String() string {
	switch k {
	case Pan:
		return "pan"
	case Zoom:
		return "zoom"
	default:
		return fmt.Sprintf("gesture(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler
func (k GestureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *GestureKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "pan", "drag":
		*k = Pan
	case "zoom", "pinch", "magnify":
		*k = Zoom
	default:
		return fmt.Errorf("unknown gesture kind %q", text)
	}
	return nil
}

// Event is one gesture update delivered by the UI layer.
// Translation and Magnification are cumulative since the gesture began.
type Event struct {
	Kind          GestureKind  `json:"kind"`
	Translation   types.Offset `json:"translation,omitempty"`
	Magnification float64      `json:"magnification,omitempty"`
	Ended         bool         `json:"ended,omitempty"`
	Cancelled     bool         `json:"cancelled,omitempty"`
}

// Handle dispatches an event to the matching session operation
func (s *Session) Handle(ev Event) error {
	switch {
	case ev.Cancelled:
		return s.Cancel(ev.Kind)
	case ev.Ended:
		return s.End(ev.Kind)
	}

	switch ev.Kind {
	case Pan:
		return s.Pan(ev.Translation)
	case Zoom:
		return s.Zoom(ev.Magnification)
	default:
		return fmt.Errorf("unknown gesture kind %v", ev.Kind)
	}
}

// Replay feeds a recorded event stream into the session, stopping at the first error
func (s *Session) Replay(events []Event) error {
	for i, ev := range events {
		if err := s.Handle(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// ParseEvents decodes a JSON array of events
func ParseEvents(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse gesture events: %w", err)
	}
	return events, nil
}
