// Package session tracks one crop session: the committed zoom and offset,
// the transient values of gestures in flight, and the Idle/Gesturing/Saved
// lifecycle.
//
// A Session is owned by a single caller (typically a UI event loop) and is not
// safe for concurrent use.
package session

import (
	"errors"
	"fmt"

	"github.com/menta2k/photo-cropper/pkg/geometry"
	"github.com/menta2k/photo-cropper/pkg/types"
)

var (
	// ErrSessionClosed is returned for any event after the session was saved
	ErrSessionClosed = errors.New("session already saved")

	// ErrNoActiveGesture is returned when ending or cancelling a gesture that never began
	ErrNoActiveGesture = errors.New("no active gesture")

	// ErrGestureActive is returned when saving while a gesture is still in flight
	ErrGestureActive = errors.New("gesture still active")
)

// Phase is the lifecycle position of a session
type Phase int

const (
	Idle Phase = iota
	Gesturing
	Saved
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Gesturing:
		return "gesturing"
	case Saved:
		return "saved"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a committed zoom/offset pair
type State struct {
	Zoom   float64      `json:"zoom"`
	Offset types.Offset `json:"offset"`
}

// DefaultState is the framing of a fresh session
func DefaultState() State {
	return State{Zoom: geometry.MinZoom}
}

// Session holds the framing of one image inside a fixed viewport
type Session struct {
	source   types.Size
	viewport types.Size
	fitScale float64

	committed State
	display   State

	// baselines captured on the first update of each gesture
	panBase  types.Offset
	zoomBase float64

	panning bool
	zooming bool
	saved   bool
}

// New starts a session at zoom 1 with the image centered
func New(source, viewport types.Size) (*Session, error) {
	return Restore(source, viewport, DefaultState())
}

// Restore starts a session pre-seeded with a previously committed framing.
// The framing is committed again so that it respects the current bounds.
func Restore(source, viewport types.Size, prior State) (*Session, error) {
	fit, err := geometry.FitScale(source, viewport)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		source:   source,
		viewport: viewport,
		fitScale: fit,
	}

	if prior.Zoom == 0 {
		prior.Zoom = geometry.MinZoom
	}
	zoom, offset, err := geometry.CommitZoom(prior.Zoom, source, fit, viewport, prior.Offset)
	if err != nil {
		return nil, fmt.Errorf("session: restore: %w", err)
	}
	s.committed = State{Zoom: zoom, Offset: offset}
	s.display = s.committed
	return s, nil
}

// Source returns the upright source pixel size
func (s *Session) Source() types.Size { return s.source }

// Viewport returns the viewport size in points
func (s *Session) Viewport() types.Size { return s.viewport }

// FitScale returns the base scale applied before user zoom
func (s *Session) FitScale() float64 { return s.fitScale }

// Committed returns the durable zoom/offset pair
func (s *Session) Committed() State { return s.committed }

// Display returns the values to render, including transient gesture values
func (s *Session) Display() State { return s.display }

// Phase returns the current lifecycle phase
func (s *Session) Phase() Phase {
	switch {
	case s.saved:
		return Saved
	case s.panning || s.zooming:
		return Gesturing
	default:
		return Idle
	}
}

// PanBounds returns the pan limits for the committed zoom
func (s *Session) PanBounds() types.Offset {
	return geometry.PanBounds(s.source, s.fitScale, s.committed.Zoom, s.viewport)
}

// Pan updates a drag gesture with its cumulative translation since the
// gesture began
func (s *Session) Pan(translation types.Offset) error {
	if s.saved {
		return ErrSessionClosed
	}
	if !s.panning {
		s.panning = true
		s.panBase = s.committed.Offset
	}
	s.display.Offset = geometry.ApplyPanDelta(s.panBase, translation)
	return nil
}

// Zoom updates a pinch gesture with its cumulative magnification since the
// gesture began
func (s *Session) Zoom(magnification float64) error {
	if s.saved {
		return ErrSessionClosed
	}
	if !s.zooming {
		s.zooming = true
		s.zoomBase = s.committed.Zoom
	}
	s.display.Zoom = geometry.ApplyZoomDelta(s.zoomBase, magnification)
	return nil
}

// End finishes a gesture and commits its value. The other gesture, when still
// in flight, keeps its live value and its own baseline.
func (s *Session) End(kind GestureKind) error {
	if s.saved {
		return ErrSessionClosed
	}
	if !s.clearActive(kind) {
		return fmt.Errorf("end %s: %w", kind, ErrNoActiveGesture)
	}

	zoom, offset := s.committed.Zoom, s.committed.Offset
	switch kind {
	case Pan:
		offset = s.display.Offset
	case Zoom:
		zoom = s.display.Zoom
	}

	zoom, offset, err := geometry.CommitZoom(zoom, s.source, s.fitScale, s.viewport, offset)
	if err != nil {
		s.restoreDisplay(kind)
		return fmt.Errorf("end %s: %w", kind, err)
	}
	s.committed = State{Zoom: zoom, Offset: offset}
	s.restoreDisplay(kind)
	if !s.panning {
		s.display.Offset = s.committed.Offset
	}
	return nil
}

// Cancel abandons a gesture without committing it
func (s *Session) Cancel(kind GestureKind) error {
	if s.saved {
		return ErrSessionClosed
	}
	if !s.clearActive(kind) {
		return fmt.Errorf("cancel %s: %w", kind, ErrNoActiveGesture)
	}
	s.restoreDisplay(kind)
	return nil
}

// restoreDisplay shows the committed value for the given gesture
func (s *Session) restoreDisplay(kind GestureKind) {
	switch kind {
	case Pan:
		s.display.Offset = s.committed.Offset
	case Zoom:
		s.display.Zoom = s.committed.Zoom
	}
}

func (s *Session) clearActive(kind GestureKind) bool {
	switch kind {
	case Pan:
		if !s.panning {
			return false
		}
		s.panning = false
	case Zoom:
		if !s.zooming {
			return false
		}
		s.zooming = false
	default:
		return false
	}
	return true
}

// CropRect computes the crop rectangle for the committed framing
func (s *Session) CropRect() (types.CropRect, error) {
	return geometry.ComputeCropRect(s.source, s.viewport, s.fitScale, s.committed.Zoom, s.committed.Offset)
}

// Save computes the crop rectangle and hands it to persist together with the
// committed framing. The session becomes Saved only when persist succeeds.
func (s *Session) Save(persist func(types.CropRect, State) error) error {
	if s.saved {
		return ErrSessionClosed
	}
	if s.panning || s.zooming {
		return ErrGestureActive
	}

	rect, err := s.CropRect()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if persist != nil {
		if err := persist(rect, s.committed); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	s.saved = true
	return nil
}
