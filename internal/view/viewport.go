// Package view holds the camera over the infinite canvas: the pan/zoom state
// and the conversion between screen pixels and world coordinates.
package view

import "math"

// Zoom bounds. Requests outside are clamped, never rejected.
const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// Viewport is the pan/zoom camera. Pan is the world origin's offset in screen
// pixels; zoom is a unitless scalar. Value semantics matter here: every
// derived viewport is computed from one snapshot of pan and zoom, so a
// handler holding a Viewport can never pair a fresh pan with a stale zoom.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// New returns the identity camera: origin at the screen origin, zoom 1.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// ScreenToWorld maps a pointer position to the canvas plane.
func (v Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.PanX) / v.Zoom, (sy - v.PanY) / v.Zoom
}

// WorldToScreen maps a canvas point to viewport pixels.
func (v Viewport) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Zoom + v.PanX, wy*v.Zoom + v.PanY
}

// PannedBy shifts the camera by a screen-space delta, 1:1 with pointer
// movement and independent of zoom. Pan is unconstrained: the canvas is
// infinite and the camera may drift arbitrarily far from content.
func (v Viewport) PannedBy(dx, dy float64) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}

// ZoomedAt moves to the requested zoom with pan recomputed so the world point
// under screen (sx, sy) stays under it. When clamping leaves zoom unchanged
// the viewport is returned as-is, pan untouched.
func (v Viewport) ZoomedAt(target, sx, sy float64) Viewport {
	z := clampZoom(target)
	if z == v.Zoom {
		return v
	}
	wx, wy := v.ScreenToWorld(sx, sy)
	return Viewport{
		PanX: sx - wx*z,
		PanY: sy - wy*z,
		Zoom: z,
	}
}

// ZoomedBy applies a zoom delta anchored at (sx, sy).
func (v Viewport) ZoomedBy(delta, sx, sy float64) Viewport {
	return v.ZoomedAt(v.Zoom+delta, sx, sy)
}

func clampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}
