/**
 * Bounding box - enclosing rectangle of all enabled monitors
 */

package arrangement

// Bounds is the smallest axis-aligned rectangle enclosing every enabled
// monitor, in monitor space.
type Bounds struct {
	Empty   bool
	MinX    int
	MinY    int
	MaxX    int
	MaxY    int
	CenterX float64
	CenterY float64
	Width   int
	Height  int
}

// EmptyBounds is returned when no monitor is enabled
var EmptyBounds = Bounds{Empty: true}

// ComputeBounds recomputes the bounding box of the enabled monitors.
// The result is never cached: a drag moves monitors between calls.
func ComputeBounds(monitors []Monitor) Bounds {
	b := EmptyBounds

	for _, m := range monitors {
		if m.Disabled {
			continue
		}
		if b.Empty {
			b = Bounds{MinX: m.X, MinY: m.Y, MaxX: m.Right(), MaxY: m.Bottom()}
			continue
		}
		b.MinX = min(b.MinX, m.X)
		b.MinY = min(b.MinY, m.Y)
		b.MaxX = max(b.MaxX, m.Right())
		b.MaxY = max(b.MaxY, m.Bottom())
	}

	if b.Empty {
		return b
	}

	b.Width = b.MaxX - b.MinX
	b.Height = b.MaxY - b.MinY
	b.CenterX = float64(b.MinX) + float64(b.Width)/2
	b.CenterY = float64(b.MinY) + float64(b.Height)/2
	return b
}
