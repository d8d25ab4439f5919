/**
 * Arrangement type definitions
 */

package arrangement

import (
	"context"
	"fmt"
	"math"
)

const (
	// MinScale and MaxScale bound the per-monitor output scale.
	MinScale = 0.25
	MaxScale = 3.0

	// DefaultRefreshRate is used when a resolution has no known rates.
	DefaultRefreshRate = 60.0
)

// Monitor represents one physical display in monitor space
type Monitor struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	X              int      `json:"x"`
	Y              int      `json:"y"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	RefreshRate    float64  `json:"refreshRate"`
	Scale          float64  `json:"scale"`
	Disabled       bool     `json:"disabled"`
	AvailableModes []string `json:"availableModes"`
}

// Right returns the x coordinate of the monitor's right edge
func (m Monitor) Right() int { return m.X + m.Width }

// Bottom returns the y coordinate of the monitor's bottom edge
func (m Monitor) Bottom() int { return m.Y + m.Height }

// Resolution returns the "WxH" form used by DisplaySettings
func (m Monitor) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// clone copies m including its mode slice so callers never alias session state
func (m Monitor) clone() Monitor {
	if m.AvailableModes != nil {
		modes := make([]string, len(m.AvailableModes))
		copy(modes, m.AvailableModes)
		m.AvailableModes = modes
	}
	return m
}

// Point is a position in monitor space
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CanvasPoint is a position in canvas space
type CanvasPoint struct {
	X float64
	Y float64
}

// CanvasRect is a rectangle in canvas space
type CanvasRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether p lies inside r (edges inclusive)
func (r CanvasRect) Contains(p CanvasPoint) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Viewport is the size of the rendering surface in canvas units
type Viewport struct {
	Width  float64
	Height float64
}

// InventoryProvider returns the current set of display descriptors
type InventoryProvider interface {
	FetchMonitors(ctx context.Context) ([]Monitor, error)
}

// Persister commits an accepted arrangement to the compositor
type Persister interface {
	PersistMonitors(ctx context.Context, monitors []Monitor) error
}

// NormalizeScale clamps scale to [MinScale, MaxScale] and rounds it to two decimals.
func NormalizeScale(scale float64) float64 {
	clamped := math.Max(MinScale, math.Min(MaxScale, scale))
	return math.Round(clamped*100) / 100
}
