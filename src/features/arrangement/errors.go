/**
 * Arrangement errors - sentinels and the typed inventory and persist failures
 */

package arrangement

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMonitor    = errors.New("unknown monitor")
	ErrDragInProgress    = errors.New("drag in progress")
	ErrNotDragging       = errors.New("no drag in progress")
	ErrInvalidGeometry   = errors.New("monitor width and height must be positive")
	ErrInvalidResolution = errors.New("invalid resolution")
)

// InventoryError reports a failed inventory fetch. The session keeps its
// previous monitor set, so the load can simply be retried.
type InventoryError struct {
	Err error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("failed to load monitors: %v", e.Err)
}

func (e *InventoryError) Unwrap() error { return e.Err }

// PersistError reports a failed save. In-memory state is left untouched.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to save monitor configuration: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// ParseWarning describes a mode string that could not be parsed. It is
// logged and skipped, never returned to callers.
type ParseWarning struct {
	Monitor string
	Mode    string
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("skipping unparsable mode %q on %s", w.Mode, w.Monitor)
}
