/**
 * hyprarrange - multi-monitor arrangement for Hyprland
 *
 * App wires the arrangement session to its collaborators:
 * - hyprctl inventory (desktop-monitor)
 * - monitors.conf writer with optional live apply
 * - sqlite draft and save history (store)
 * - TOML profiles
 */

package hyprarrange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/ln64-git/hyprarrange/src/config"
	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	desktopmonitor "github.com/ln64-git/hyprarrange/src/features/desktop-monitor"
	"github.com/ln64-git/hyprarrange/src/features/profiles"
	"github.com/ln64-git/hyprarrange/src/store"
	"github.com/ln64-git/hyprarrange/src/utility"
)

// App is the main orchestrator behind every CLI command
type App struct {
	logger  *utility.Logger
	config  *config.Config
	hyprctl *desktopmonitor.Hyprctl
	desktop *desktopmonitor.DesktopIntegration
	writer  *desktopmonitor.ConfigWriter
	watcher *desktopmonitor.ConfigWatcher
	store   *store.Store
	session *arrangement.Session

	mu            sync.Mutex
	loaded        bool
	draftSkipped  []string
	draftApplied  bool
	lastSaveEntry *store.Entry
}

// NewApp opens the state database and builds the session
func NewApp(ctx context.Context, logger *utility.Logger, cfg *config.Config) (*App, error) {
	st, err := store.Open(ctx, cfg.StateDBPath, logger.WithPrefix("store"))
	if err != nil {
		return nil, err
	}
	return NewAppWith(logger, cfg, utility.NewShell(logger.WithPrefix("shell")), st), nil
}

// NewAppWith builds an App around an existing runner and store
func NewAppWith(logger *utility.Logger, cfg *config.Config, runner utility.Runner, st *store.Store) *App {
	hyprctl := desktopmonitor.NewHyprctl(runner, cfg.HyprctlTimeout)
	desktopLogger := logger.WithPrefix("desktop")

	a := &App{
		logger:  logger,
		config:  cfg,
		hyprctl: hyprctl,
		desktop: desktopmonitor.NewDesktopIntegration(desktopLogger, runner, hyprctl, cfg.MonitorsConfPath),
		writer:  desktopmonitor.NewConfigWriter(desktopLogger, hyprctl, cfg.MonitorsConfPath, cfg.ApplyLive),
		watcher: desktopmonitor.NewConfigWatcher(desktopLogger, cfg.MonitorsConfPath),
		store:   st,
	}

	a.session = arrangement.NewSession(a.desktop.Displays(), recordingPersister{app: a}, logger.WithPrefix("session"), arrangement.Options{
		Canvas: arrangement.CanvasOptions{
			Scale:           cfg.CanvasScale,
			MinRenderWidth:  cfg.MinRenderWidth,
			MinRenderHeight: cfg.MinRenderHeight,
		},
		SnapThreshold: cfg.SnapThreshold,
		Viewport:      arrangement.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		Release:       arrangement.CommitOnRelease,
	})

	return a
}

// Close releases the state database
func (a *App) Close() error {
	return a.store.Close()
}

// Session exposes the arrangement session
func (a *App) Session() *arrangement.Session {
	return a.session
}

// Config returns the active configuration
func (a *App) Config() *config.Config {
	return a.config
}

// ==================== Loading and drafts ====================

// Load reads the live inventory and lays the pending draft over it.
// Later calls are no-ops unless force is set.
func (a *App) Load(ctx context.Context, force bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.loaded && !force {
		return nil
	}

	if err := a.session.Load(ctx); err != nil {
		return err
	}

	draft, ok, err := a.store.LoadDraft(ctx)
	if err != nil {
		return err
	}
	a.draftApplied, a.draftSkipped = false, nil
	if ok {
		skipped, err := a.overlay(profiles.FromMonitors("draft", draft.Monitors, draft.UpdatedAt), draft.Selected)
		if err != nil {
			return fmt.Errorf("failed to apply draft: %w", err)
		}
		a.draftApplied = true
		a.draftSkipped = skipped
		for _, name := range skipped {
			a.logger.Warn("Draft mentions %s which is not connected", name)
		}
	}

	a.loaded = true
	return nil
}

// overlay applies a profile to the session, keeping or setting the selection
func (a *App) overlay(p profiles.Profile, selected string) ([]string, error) {
	if selected == "" {
		if m, ok := a.session.Selected(); ok {
			selected = m.Name
		}
	}

	updated, unmatched := profiles.Apply(p, a.session.Monitors())
	for _, m := range updated {
		if err := a.session.UpdateMonitor(m); err != nil {
			return nil, err
		}
	}

	if m, ok := a.session.MonitorByName(selected); ok {
		_ = a.session.Select(m.ID)
	} else if ms := a.session.Monitors(); len(ms) > 0 {
		_ = a.session.Select(ms[0].ID)
	}
	return unmatched, nil
}

// DraftInfo reports whether a draft is pending and which of its monitors
// could not be matched
func (a *App) DraftInfo() (pending bool, skipped []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draftApplied, append([]string(nil), a.draftSkipped...)
}

// persistDraft stores the session as the pending draft
func (a *App) persistDraft(ctx context.Context) error {
	selected := ""
	if m, ok := a.session.Selected(); ok {
		selected = m.Name
	}
	if err := a.store.SaveDraft(ctx, a.session.Monitors(), selected); err != nil {
		return err
	}

	a.mu.Lock()
	a.draftApplied = true
	a.mu.Unlock()
	return nil
}

// Edit loads the session, runs fn and keeps the result as the draft
func (a *App) Edit(ctx context.Context, fn func(*arrangement.Session) error) error {
	if err := a.Load(ctx, false); err != nil {
		return err
	}
	if err := fn(a.session); err != nil {
		return err
	}
	return a.persistDraft(ctx)
}

// Resolve finds a monitor by connector name or numeric id. An empty
// reference means the current selection.
func (a *App) Resolve(ref string) (arrangement.Monitor, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if m, ok := a.session.Selected(); ok {
			return m, nil
		}
		return arrangement.Monitor{}, fmt.Errorf("%w: nothing selected", arrangement.ErrUnknownMonitor)
	}
	if m, ok := a.session.MonitorByName(ref); ok {
		return m, nil
	}
	if id, err := strconv.Atoi(ref); err == nil {
		if m, ok := a.session.Monitor(id); ok {
			return m, nil
		}
	}
	return arrangement.Monitor{}, fmt.Errorf("%w: %s", arrangement.ErrUnknownMonitor, ref)
}

// ==================== Save, reset, history ====================

// Save writes the arrangement to monitors.conf, records it in the history
// and drops the draft
func (a *App) Save(ctx context.Context) (store.Entry, error) {
	if err := a.Load(ctx, false); err != nil {
		return store.Entry{}, err
	}

	a.mu.Lock()
	a.lastSaveEntry = nil
	a.mu.Unlock()

	if err := a.session.Save(ctx); err != nil {
		return store.Entry{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.draftApplied, a.draftSkipped = false, nil
	if a.lastSaveEntry == nil {
		return store.Entry{}, nil
	}
	return *a.lastSaveEntry, nil
}

// recordingPersister writes monitors.conf, then records the save
type recordingPersister struct {
	app *App
}

func (p recordingPersister) PersistMonitors(ctx context.Context, monitors []arrangement.Monitor) error {
	a := p.app
	a.watcher.SkipNext()
	if err := a.writer.PersistMonitors(ctx, monitors); err != nil {
		a.watcher.CancelSkip()
		return err
	}

	entry, err := a.store.RecordSave(ctx, a.writer.Path(), monitors)
	if err != nil {
		a.logger.Warn("Saved, but history was not recorded: %v", err)
	} else {
		a.mu.Lock()
		a.lastSaveEntry = &entry
		a.mu.Unlock()
	}

	if err := a.store.ClearDraft(ctx); err != nil {
		a.logger.Warn("Saved, but the draft could not be cleared: %v", err)
	}
	return nil
}

// Reset drops the draft and reloads the live inventory
func (a *App) Reset(ctx context.Context) error {
	if err := a.store.ClearDraft(ctx); err != nil {
		return err
	}
	return a.Load(ctx, true)
}

// History lists saved arrangements, newest first
func (a *App) History(ctx context.Context, limit int) ([]store.Entry, error) {
	return a.store.ListHistory(ctx, limit)
}

// Restore lays a saved arrangement over the live monitors as the new draft
func (a *App) Restore(ctx context.Context, idPrefix string) (store.Entry, []string, error) {
	entry, err := a.store.GetHistory(ctx, idPrefix)
	if err != nil {
		return store.Entry{}, nil, err
	}

	var unmatched []string
	err = a.Edit(ctx, func(*arrangement.Session) error {
		var err error
		unmatched, err = a.overlay(profiles.FromMonitors("history", entry.Monitors, entry.SavedAt), "")
		return err
	})
	return entry, unmatched, err
}

// ==================== Profiles ====================

// Export writes the current arrangement as a TOML profile
func (a *App) Export(ctx context.Context, name, path string) (profiles.Profile, error) {
	if err := a.Load(ctx, false); err != nil {
		return profiles.Profile{}, err
	}
	p := profiles.FromMonitors(name, a.session.Monitors(), time.Now())
	if err := profiles.WriteFile(path, p); err != nil {
		return profiles.Profile{}, err
	}
	a.logger.Info("Exported profile %q to %s", name, path)
	return p, nil
}

// Import lays a TOML profile over the live monitors as the new draft
func (a *App) Import(ctx context.Context, path string) (profiles.Profile, []string, error) {
	p, err := profiles.ReadFile(path)
	if err != nil {
		return profiles.Profile{}, nil, err
	}

	var unmatched []string
	err = a.Edit(ctx, func(*arrangement.Session) error {
		var err error
		unmatched, err = a.overlay(p, "")
		return err
	})
	return p, unmatched, err
}

// ==================== Status and watch ====================

// Status collects desktop, draft and history information concurrently.
// short trades the full desktop report for a three-line summary.
func (a *App) Status(ctx context.Context, short bool) (string, error) {
	var (
		desktop string
		draft   store.Draft
		pending bool
		last    []store.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if short {
			desktop, err = a.desktop.GetDesktopSummary(gctx)
		} else {
			desktop, err = a.desktop.GetFormattedStatus(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		draft, pending, err = a.store.LoadDraft(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		last, err = a.store.ListHistory(gctx, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	output := "=== hyprarrange status ===\n\n" + desktop + "\n\n"
	if pending {
		output += fmt.Sprintf("Draft: %d monitors, edited %s\n", len(draft.Monitors), draft.UpdatedAt.Local().Format(time.RFC1123))
	} else {
		output += "Draft: none\n"
	}
	if len(last) > 0 {
		output += fmt.Sprintf("Last save: %s (%s)\n", last[0].SavedAt.Local().Format(time.RFC1123), shortID(last[0].ID))
	} else {
		output += "Last save: never\n"
	}
	output += fmt.Sprintf("Snap threshold: %dpx, live apply: %s\n", a.session.SnapThreshold(), boolToOnOff(a.config.ApplyLive))
	if files := a.logger.ListLogFiles(); len(files) > 0 {
		output += fmt.Sprintf("Log files: %s\n", strings.Join(files, ", "))
	}

	return output, nil
}

// Watch reloads the inventory whenever monitors.conf changes on disk
func (a *App) Watch(ctx context.Context, onReload func([]arrangement.Monitor)) error {
	return a.watcher.Watch(ctx, func(e fsnotify.Event) {
		if err := a.Load(ctx, true); err != nil {
			var invErr *arrangement.InventoryError
			if errors.As(err, &invErr) {
				a.logger.Warn("Reload after change failed: %v", err)
				return
			}
			a.logger.Error("Reload after change failed: %v", err)
			return
		}
		if onReload != nil {
			onReload(a.session.Monitors())
		}
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func boolToOnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
