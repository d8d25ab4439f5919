/**
 * Arrangement session - owns the monitor set, the selection and the drag state machine
 */

package arrangement

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ln64-git/hyprarrange/src/utility"
)

// DragState describes an active drag gesture
type DragState struct {
	MonitorID     int
	PointerOffset CanvasPoint
	Origin        Point
}

// ReleaseDecision is everything known when a drag ends
type ReleaseDecision struct {
	MonitorID int
	Origin    Point
	Live      Point
	Preview   *Point
}

// ReleasePolicy decides the final position of a monitor when a drag ends.
// It is the single place where drag-end behavior can change.
type ReleasePolicy func(ReleaseDecision) Point

// CommitOnRelease always commits: the snap preview when one is active,
// otherwise the last unsnapped position. There is no cancel path.
func CommitOnRelease(d ReleaseDecision) Point {
	if d.Preview != nil {
		return *d.Preview
	}
	return d.Live
}

// Options configures a Session
type Options struct {
	Canvas        CanvasOptions
	SnapThreshold int
	Viewport      Viewport
	Release       ReleasePolicy
}

// DefaultOptions returns the reference behavior: scale 0.15, 120x80 minimum
// render size, snap threshold 200 and an 800x600 viewport.
func DefaultOptions() Options {
	return Options{
		Canvas:        DefaultCanvasOptions(),
		SnapThreshold: DefaultSnapThreshold,
		Viewport:      Viewport{Width: 800, Height: 600},
		Release:       CommitOnRelease,
	}
}

// Session is the single owner of the in-memory arrangement. All reads and
// mutations go through its mutex; at most one load and one save are in flight.
type Session struct {
	logger    *utility.Logger
	inventory InventoryProvider
	persister Persister

	canvas   CanvasOptions
	resolver SnapResolver
	release  ReleasePolicy

	loadSem *semaphore.Weighted
	saveSem *semaphore.Weighted

	mu           sync.Mutex
	monitors     []Monitor
	selectedID   int
	hasSelection bool
	viewport     Viewport
	drag         *DragState
	preview      *Point
}

// NewSession creates an empty session. Call Load to populate it.
func NewSession(inventory InventoryProvider, persister Persister, logger *utility.Logger, opts Options) *Session {
	if opts.Canvas.Scale <= 0 {
		opts.Canvas = DefaultCanvasOptions()
	}
	if opts.Release == nil {
		opts.Release = CommitOnRelease
	}
	return &Session{
		logger:    logger,
		inventory: inventory,
		persister: persister,
		canvas:    opts.Canvas,
		resolver:  NewSnapResolver(opts.SnapThreshold),
		release:   opts.Release,
		loadSem:   semaphore.NewWeighted(1),
		saveSem:   semaphore.NewWeighted(1),
		viewport:  opts.Viewport,
	}
}

// ==================== Inventory ====================

// Load replaces the monitor set with a fresh inventory. The selection is
// kept if its id still exists, otherwise the first monitor is selected.
// On failure the previous set is left untouched.
func (s *Session) Load(ctx context.Context) error {
	if s.IsDragging() {
		return ErrDragInProgress
	}

	if err := s.loadSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.loadSem.Release(1)

	fetched, err := s.inventory.FetchMonitors(ctx)
	if err != nil {
		s.logger.Error("Inventory fetch failed: %v", err)
		return &InventoryError{Err: err}
	}

	monitors := make([]Monitor, 0, len(fetched))
	seen := make(map[int]bool, len(fetched))
	for _, m := range fetched {
		if m.Width <= 0 || m.Height <= 0 {
			return &InventoryError{Err: fmt.Errorf("%w: %s is %dx%d", ErrInvalidGeometry, m.Name, m.Width, m.Height)}
		}
		if seen[m.ID] {
			return &InventoryError{Err: fmt.Errorf("duplicate monitor id %d", m.ID)}
		}
		seen[m.ID] = true
		m = m.clone()
		m.Scale = NormalizeScale(m.Scale)
		monitors = append(monitors, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag != nil {
		return ErrDragInProgress
	}

	s.monitors = monitors
	if !s.hasSelection || s.indexLocked(s.selectedID) < 0 {
		s.hasSelection = len(monitors) > 0
		if s.hasSelection {
			s.selectedID = monitors[0].ID
		}
	}

	s.logger.Debug("Loaded %d monitors", len(monitors))
	return nil
}

// Save hands the current monitor set to the persister. Nothing in the
// session changes, whether the save succeeds or fails.
func (s *Session) Save(ctx context.Context) error {
	if err := s.saveSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.saveSem.Release(1)

	s.mu.Lock()
	if s.drag != nil {
		s.mu.Unlock()
		return ErrDragInProgress
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persister.PersistMonitors(ctx, snapshot); err != nil {
		s.logger.Error("Persist failed: %v", err)
		return &PersistError{Err: err}
	}

	s.logger.Info("Saved configuration for %d monitors", len(snapshot))
	return nil
}

// ==================== Reads ====================

// Monitors returns a copy of the current monitor set
func (s *Session) Monitors() []Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Monitor returns the current version of the monitor with id
func (s *Session) Monitor(id int) (Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Monitor{}, false
	}
	return s.monitors[idx].clone(), true
}

// MonitorByName looks a monitor up by its connector name
func (s *Session) MonitorByName(name string) (Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.monitors {
		if m.Name == name {
			return m.clone(), true
		}
	}
	return Monitor{}, false
}

// Selected returns the live version of the selected monitor
func (s *Session) Selected() (Monitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasSelection {
		return Monitor{}, false
	}
	idx := s.indexLocked(s.selectedID)
	if idx < 0 {
		return Monitor{}, false
	}
	return s.monitors[idx].clone(), true
}

// Bounds returns the bounding box of the enabled monitors
func (s *Session) Bounds() Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeBounds(s.monitors)
}

// Transform returns the canvas transform for the current monitors and viewport
func (s *Session) Transform() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transformLocked()
}

// CanvasOptions returns the projection parameters
func (s *Session) CanvasOptions() CanvasOptions {
	return s.canvas
}

// SnapThreshold returns the snap distance in monitor-space pixels
func (s *Session) SnapThreshold() int {
	return s.resolver.Threshold
}

// SetViewport records a new viewport size. Monitor data is not touched;
// the transform follows on the next read.
func (s *Session) SetViewport(width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = Viewport{Width: width, Height: height}
}

// Viewport returns the current viewport size
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// DisplaySettings parses the selectable modes of monitor id, logging and
// skipping modes that do not parse.
func (s *Session) DisplaySettings(id int) (DisplaySettings, error) {
	m, ok := s.Monitor(id)
	if !ok {
		return DisplaySettings{}, fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}
	return BuildDisplaySettings(m, s.warnParse), nil
}

func (s *Session) warnParse(w ParseWarning) {
	s.logger.Warn("%s", w)
}

// ==================== Selection and edits ====================

// Select makes the monitor with id the selection
func (s *Session) Select(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}
	s.selectedID = id
	s.hasSelection = true
	return nil
}

// UpdateMonitor replaces the stored monitor with the same id and selects it.
// The scale is clamped and rounded before it is stored.
func (s *Session) UpdateMonitor(m Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(m)
}

func (s *Session) updateLocked(m Monitor) error {
	if s.drag != nil {
		return ErrDragInProgress
	}
	idx := s.indexLocked(m.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownMonitor, m.ID)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidGeometry, m.Width, m.Height)
	}

	m = m.clone()
	m.Scale = NormalizeScale(m.Scale)
	s.monitors[idx] = m
	s.selectedID = m.ID
	s.hasSelection = true
	return nil
}

// edit applies fn to the live copy of monitor id and stores the result
func (s *Session) edit(id int, fn func(*Monitor) error) (Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Monitor{}, fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}
	m := s.monitors[idx].clone()
	if err := fn(&m); err != nil {
		return Monitor{}, err
	}
	if err := s.updateLocked(m); err != nil {
		return Monitor{}, err
	}
	return s.monitors[idx].clone(), nil
}

// SetResolution switches monitor id to res ("WxH") and picks a refresh
// rate valid for it: the current one if supported, else the highest known.
func (s *Session) SetResolution(id int, res string) (Monitor, error) {
	return s.edit(id, func(m *Monitor) error {
		w, h, err := ParseResolution(res)
		if err != nil {
			return err
		}
		settings := BuildDisplaySettings(*m, s.warnParse)
		m.RefreshRate = settings.RefreshRateFor(res, m.RefreshRate)
		m.Width, m.Height = w, h
		return nil
	})
}

// SetRefreshRate sets the refresh rate of monitor id
func (s *Session) SetRefreshRate(id int, rate float64) (Monitor, error) {
	return s.edit(id, func(m *Monitor) error {
		if rate <= 0 {
			return fmt.Errorf("refresh rate must be positive, got %v", rate)
		}
		m.RefreshRate = rate
		return nil
	})
}

// SetPosition moves monitor id without snapping
func (s *Session) SetPosition(id, x, y int) (Monitor, error) {
	return s.edit(id, func(m *Monitor) error {
		m.X, m.Y = x, y
		return nil
	})
}

// SetEnabled enables or disables monitor id
func (s *Session) SetEnabled(id int, enabled bool) (Monitor, error) {
	return s.edit(id, func(m *Monitor) error {
		m.Disabled = !enabled
		return nil
	})
}

// SetScale sets the output scale of monitor id, clamped to [0.25, 3.0]
func (s *Session) SetScale(id int, scale float64) (Monitor, error) {
	return s.edit(id, func(m *Monitor) error {
		m.Scale = scale
		return nil
	})
}

// ==================== Drag state machine ====================

// IsDragging reports whether a drag gesture is active
func (s *Session) IsDragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag != nil
}

// Drag returns the active drag state
func (s *Session) Drag() (DragState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag == nil {
		return DragState{}, false
	}
	return *s.drag, true
}

// SnapPreview returns the position the dragged monitor would snap to on release
func (s *Session) SnapPreview() (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag == nil || s.preview == nil {
		return Point{}, false
	}
	return *s.preview, true
}

// PointerDown starts dragging monitor id. pointer is in canvas space; its
// offset within the monitor's rectangle is kept for the whole gesture.
func (s *Session) PointerDown(id int, pointer CanvasPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerDownLocked(id, pointer)
}

func (s *Session) pointerDownLocked(id int, pointer CanvasPoint) error {
	if s.drag != nil {
		return ErrDragInProgress
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}

	m := s.monitors[idx]
	origin := s.transformLocked().ToCanvas(m.X, m.Y)
	s.drag = &DragState{
		MonitorID:     id,
		PointerOffset: CanvasPoint{X: pointer.X - origin.X, Y: pointer.Y - origin.Y},
		Origin:        Point{X: m.X, Y: m.Y},
	}
	s.preview = nil
	s.selectedID = id
	s.hasSelection = true

	s.logger.Debug("Drag start: monitor %d at %d,%d", id, m.X, m.Y)
	return nil
}

// PointerMove tracks the pointer: the dragged monitor follows it unsnapped,
// and a snap preview is published only when snapping would move it.
// It returns the live (unsnapped) position.
func (s *Session) PointerMove(pointer CanvasPoint) (Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerMoveLocked(pointer)
}

func (s *Session) pointerMoveLocked(pointer CanvasPoint) (Point, error) {
	if s.drag == nil {
		return Point{}, ErrNotDragging
	}
	id := s.drag.MonitorID
	idx := s.indexLocked(id)
	if idx < 0 {
		s.drag, s.preview = nil, nil
		return Point{}, fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}

	live := s.transformLocked().ToMonitor(CanvasPoint{
		X: pointer.X - s.drag.PointerOffset.X,
		Y: pointer.Y - s.drag.PointerOffset.Y,
	})
	s.trackLocked(idx, live)
	return live, nil
}

// trackLocked moves the dragged monitor at idx to live and refreshes the
// snap preview
func (s *Session) trackLocked(idx int, live Point) {
	s.monitors[idx].X = live.X
	s.monitors[idx].Y = live.Y

	snapped := s.resolver.Resolve(s.monitors[idx], live.X, live.Y, s.othersLocked(idx))
	if snapped != live {
		s.preview = &snapped
	} else {
		s.preview = nil
	}
}

// PointerUp ends the drag. The release policy picks the final position;
// drag state and preview are cleared regardless.
func (s *Session) PointerUp() (Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerUpLocked()
}

func (s *Session) pointerUpLocked() (Monitor, error) {
	if s.drag == nil {
		return Monitor{}, ErrNotDragging
	}
	drag, preview := *s.drag, s.preview
	s.drag, s.preview = nil, nil

	idx := s.indexLocked(drag.MonitorID)
	if idx < 0 {
		return Monitor{}, fmt.Errorf("%w: %d", ErrUnknownMonitor, drag.MonitorID)
	}

	m := &s.monitors[idx]
	final := s.release(ReleaseDecision{
		MonitorID: drag.MonitorID,
		Origin:    drag.Origin,
		Live:      Point{X: m.X, Y: m.Y},
		Preview:   preview,
	})
	m.X, m.Y = final.X, final.Y

	s.logger.Debug("Drag end: monitor %d committed at %d,%d", m.ID, m.X, m.Y)
	return m.clone(), nil
}

// DragTo runs a complete gesture moving monitor id to (x, y) in monitor
// space. The target is used as is, so it also holds while no monitor is
// enabled and the canvas transform is the fallback. Snapping applies as
// for a pointer drag.
func (s *Session) DragTo(id, x, y int) (Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Monitor{}, fmt.Errorf("%w: %d", ErrUnknownMonitor, id)
	}

	m := s.monitors[idx]
	if err := s.pointerDownLocked(id, s.transformLocked().ToCanvas(m.X, m.Y)); err != nil {
		return Monitor{}, err
	}
	s.trackLocked(idx, Point{X: x, Y: y})
	return s.pointerUpLocked()
}

// ==================== Internals ====================

func (s *Session) indexLocked(id int) int {
	for i := range s.monitors {
		if s.monitors[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) transformLocked() Transform {
	return NewTransform(ComputeBounds(s.monitors), s.viewport, s.canvas.Scale)
}

// othersLocked returns the enabled monitors other than the one at idx, at
// their stored positions
func (s *Session) othersLocked(idx int) []Monitor {
	others := make([]Monitor, 0, len(s.monitors))
	for i, m := range s.monitors {
		if i == idx || m.Disabled {
			continue
		}
		others = append(others, m)
	}
	return others
}

func (s *Session) snapshotLocked() []Monitor {
	out := make([]Monitor, len(s.monitors))
	for i, m := range s.monitors {
		out[i] = m.clone()
	}
	return out
}
