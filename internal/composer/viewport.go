package composer

import "math"

const (
	MinZoom  = 0.1
	MaxZoom  = 3.0
	ZoomStep = 1.2
	// FitPadding is the margin kept around the page by ZoomToFit.
	FitPadding = 40.0
)

// Viewport is view state only; history never records it.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

func (s *Store) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (s *Store) SetZoom(zoom float64) float64 {
	var out float64
	s.mutate(ChangeViewport, func() bool {
		s.viewport.Zoom = clampZoom(zoom)
		out = s.viewport.Zoom
		return true
	})
	return out
}

func (s *Store) ZoomIn() float64 {
	return s.scaleZoom(ZoomStep)
}

func (s *Store) ZoomOut() float64 {
	return s.scaleZoom(1 / ZoomStep)
}

func (s *Store) scaleZoom(f float64) float64 {
	var out float64
	s.mutate(ChangeViewport, func() bool {
		s.viewport.Zoom = clampZoom(s.viewport.Zoom * f)
		out = s.viewport.Zoom
		return true
	})
	return out
}

func (s *Store) SetPan(x, y float64) {
	s.mutate(ChangeViewport, func() bool {
		s.viewport.Pan = Point{X: x, Y: y}
		return true
	})
}

func (s *Store) ResetViewport() {
	s.mutate(ChangeViewport, func() bool {
		s.viewport = DefaultViewport()
		return true
	})
}

// ZoomToFit scales the page to fit a container of the given pixel size and
// centres it. Non-positive sizes are ignored.
func (s *Store) ZoomToFit(containerW, containerH float64) Viewport {
	var out Viewport
	s.mutate(ChangeViewport, func() bool {
		if containerW <= 0 || containerH <= 0 {
			out = s.viewport
			return false
		}
		zoom := clampZoom(math.Min(
			(containerW-2*FitPadding)/s.scene.Width,
			(containerH-2*FitPadding)/s.scene.Height,
		))
		s.viewport = Viewport{
			Zoom: zoom,
			Pan: Point{
				X: (containerW - s.scene.Width*zoom) / 2,
				Y: (containerH - s.scene.Height*zoom) / 2,
			},
		}
		out = s.viewport
		return true
	})
	return out
}
