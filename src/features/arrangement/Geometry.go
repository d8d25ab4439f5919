/**
 * Geometry - monitor space <-> canvas space
 */

package arrangement

import "math"

const (
	DefaultCanvasScale     = 0.15
	DefaultMinRenderWidth  = 120.0
	DefaultMinRenderHeight = 80.0
)

// FallbackAnchor is where ToCanvas places everything when no monitor is enabled
var FallbackAnchor = CanvasPoint{X: 50, Y: 50}

// CanvasOptions holds the fixed parameters of the canvas projection
type CanvasOptions struct {
	Scale           float64
	MinRenderWidth  float64
	MinRenderHeight float64
}

// DefaultCanvasOptions returns the reference projection parameters
func DefaultCanvasOptions() CanvasOptions {
	return CanvasOptions{
		Scale:           DefaultCanvasScale,
		MinRenderWidth:  DefaultMinRenderWidth,
		MinRenderHeight: DefaultMinRenderHeight,
	}
}

// Transform maps between monitor space and canvas space. A transform built
// over an empty monitor set maps every point to a fixed anchor.
type Transform struct {
	Scale    float64
	OffsetX  float64
	OffsetY  float64
	fallback bool
}

// NewTransform centers bounds inside viewport at the given scale.
func NewTransform(bounds Bounds, viewport Viewport, scale float64) Transform {
	if bounds.Empty {
		return Transform{Scale: scale, fallback: true}
	}
	return Transform{
		Scale:   scale,
		OffsetX: viewport.Width/2 - bounds.CenterX*scale,
		OffsetY: viewport.Height/2 - bounds.CenterY*scale,
	}
}

// IsFallback reports whether the transform was built without enabled monitors
func (t Transform) IsFallback() bool { return t.fallback }

// ToCanvas converts a monitor-space point into canvas space
func (t Transform) ToCanvas(x, y int) CanvasPoint {
	if t.fallback {
		return FallbackAnchor
	}
	return CanvasPoint{
		X: float64(x)*t.Scale + t.OffsetX,
		Y: float64(y)*t.Scale + t.OffsetY,
	}
}

// ToMonitor converts a canvas point back into monitor space, rounding to whole pixels
func (t Transform) ToMonitor(p CanvasPoint) Point {
	if t.fallback {
		return Point{}
	}
	return Point{
		X: int(math.Round((p.X - t.OffsetX) / t.Scale)),
		Y: int(math.Round((p.Y - t.OffsetY) / t.Scale)),
	}
}

// RenderSize is the on-canvas size of m, never smaller than the configured minimum
func (o CanvasOptions) RenderSize(m Monitor) (float64, float64) {
	return math.Max(o.MinRenderWidth, float64(m.Width)*o.Scale),
		math.Max(o.MinRenderHeight, float64(m.Height)*o.Scale)
}

// RenderRect places m on the canvas using t
func (o CanvasOptions) RenderRect(t Transform, m Monitor) CanvasRect {
	origin := t.ToCanvas(m.X, m.Y)
	w, h := o.RenderSize(m)
	return CanvasRect{X: origin.X, Y: origin.Y, Width: w, Height: h}
}
