/**
 * Snap resolver - aligns a dragged monitor to the origin and to other monitors' edges
 */

package arrangement

// DefaultSnapThreshold is the snap distance in monitor-space pixels
const DefaultSnapThreshold = 200

// SnapResolver computes snapped positions in monitor space
type SnapResolver struct {
	Threshold int
}

// NewSnapResolver returns a resolver with the given threshold
func NewSnapResolver(threshold int) SnapResolver {
	return SnapResolver{Threshold: threshold}
}

// Resolve snaps (x, y) for target, whose stored position is ignored; only
// its size matters. Every rule is evaluated in a fixed order and the last
// match wins per axis. Disabled monitors in others never act as targets.
// Results are never clamped, so negative positions are valid.
func (r SnapResolver) Resolve(target Monitor, x, y int, others []Monitor) Point {
	snappedX, snappedY := x, y

	if r.near(x, 0) {
		snappedX = 0
	}
	if r.near(y, 0) {
		snappedY = 0
	}

	right := x + target.Width
	bottom := y + target.Height

	for _, o := range others {
		if o.Disabled || o.ID == target.ID {
			continue
		}

		// left edge to o's right edge
		if r.near(x, o.Right()) {
			snappedX = o.Right()
		}
		// right edge to o's left edge
		if r.near(right, o.X) {
			snappedX = o.X - target.Width
		}
		// left edges aligned
		if r.near(x, o.X) {
			snappedX = o.X
		}
		// right edges aligned
		if r.near(right, o.Right()) {
			snappedX = o.Right() - target.Width
		}

		// top edge to o's bottom edge
		if r.near(y, o.Bottom()) {
			snappedY = o.Bottom()
		}
		// bottom edge to o's top edge
		if r.near(bottom, o.Y) {
			snappedY = o.Y - target.Height
		}
		// top edges aligned
		if r.near(y, o.Y) {
			snappedY = o.Y
		}
		// bottom edges aligned
		if r.near(bottom, o.Bottom()) {
			snappedY = o.Bottom() - target.Height
		}
	}

	return Point{X: snappedX, Y: snappedY}
}

func (r SnapResolver) near(a, b int) bool {
	return absInt(a-b) <= r.Threshold
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
