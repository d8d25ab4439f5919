/**
 * Layout - render-ready projection of the session onto the canvas
 */

package arrangement

// MonitorView is one monitor placed on the canvas
type MonitorView struct {
	Monitor  Monitor
	Rect     CanvasRect
	Selected bool
	Dragging bool
}

// LayoutView is a render-ready projection of the session. It carries no
// paint information; a UI layer draws it however it likes.
type LayoutView struct {
	Viewport  Viewport
	Transform Transform
	Bounds    Bounds
	Center    *CanvasPoint
	Monitors  []MonitorView
	Preview   *CanvasRect
}

// Layout projects the current monitors onto the canvas
func (s *Session) Layout() LayoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounds := ComputeBounds(s.monitors)
	t := NewTransform(bounds, s.viewport, s.canvas.Scale)

	view := LayoutView{
		Viewport:  s.viewport,
		Transform: t,
		Bounds:    bounds,
		Monitors:  make([]MonitorView, 0, len(s.monitors)),
	}

	if !bounds.Empty {
		view.Center = &CanvasPoint{
			X: bounds.CenterX*t.Scale + t.OffsetX,
			Y: bounds.CenterY*t.Scale + t.OffsetY,
		}
	}

	for _, m := range s.monitors {
		mv := MonitorView{
			Monitor:  m.clone(),
			Rect:     s.canvas.RenderRect(t, m),
			Selected: s.hasSelection && m.ID == s.selectedID,
			Dragging: s.drag != nil && m.ID == s.drag.MonitorID,
		}
		view.Monitors = append(view.Monitors, mv)

		if mv.Dragging && s.preview != nil {
			ghost := m
			ghost.X, ghost.Y = s.preview.X, s.preview.Y
			rect := s.canvas.RenderRect(t, ghost)
			view.Preview = &rect
		}
	}

	return view
}

// HitTest returns the id of the topmost monitor under p. Later monitors
// are drawn over earlier ones.
func (v LayoutView) HitTest(p CanvasPoint) (int, bool) {
	for i := len(v.Monitors) - 1; i >= 0; i-- {
		if v.Monitors[i].Rect.Contains(p) {
			return v.Monitors[i].Monitor.ID, true
		}
	}
	return 0, false
}
