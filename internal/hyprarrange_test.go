package hyprarrange

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ln64-git/hyprarrange/src/config"
	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/store"
	"github.com/ln64-git/hyprarrange/src/utility"
)

const monitorsJSON = `[
  {"id": 0, "name": "DP-1", "width": 2560, "height": 1440, "refreshRate": 143.91, "x": 0, "y": 0,
   "scale": 1.0, "disabled": false, "availableModes": ["2560x1440@143.91Hz", "1920x1080@60.00Hz"]},
  {"id": 1, "name": "HDMI-A-1", "width": 1920, "height": 1080, "refreshRate": 60.0, "x": 2560, "y": 0,
   "scale": 1.0, "disabled": false, "availableModes": ["1920x1080@60.00Hz"]}
]`

// hyprctlRunner answers `hyprctl monitors all -j` and fails everything else
type hyprctlRunner struct {
	mu    sync.Mutex
	calls []string
}

func (r *hyprctlRunner) Execute(_ context.Context, name string, args []string, _ *utility.ExecOptions) (*utility.Result, error) {
	key := name + " " + strings.Join(args, " ")
	r.mu.Lock()
	r.calls = append(r.calls, key)
	r.mu.Unlock()

	if key == "hyprctl monitors all -j" {
		return &utility.Result{Stdout: monitorsJSON, Command: key}, nil
	}
	return &utility.Result{ExitCode: 1, Stderr: "unexpected command", Command: key}, nil
}

type fixture struct {
	cfg    *config.Config
	store  *store.Store
	runner *hyprctlRunner
	logger *utility.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "test_signature")

	dir := t.TempDir()
	cfg := config.Default()
	cfg.MonitorsConfPath = filepath.Join(dir, "hypr", "monitors.conf")
	cfg.StateDBPath = filepath.Join(dir, "state", "state.db")
	cfg.ApplyLive = false

	logger := utility.NewLoggerTo(io.Discard, utility.ERROR)
	st, err := store.Open(context.Background(), cfg.StateDBPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return &fixture{cfg: cfg, store: st, runner: &hyprctlRunner{}, logger: logger}
}

func (f *fixture) app() *App {
	return NewAppWith(f.logger, f.cfg, f.runner, f.store)
}

func moveHDMI(x, y int) func(*arrangement.Session) error {
	return func(s *arrangement.Session) error {
		if _, err := s.SetPosition(1, x, y); err != nil {
			return err
		}
		return s.Select(1)
	}
}

func TestLoadReadsInventory(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()

	require.NoError(t, app.Load(ctx, false))
	monitors := app.Session().Monitors()
	require.Len(t, monitors, 2)
	assert.Equal(t, "DP-1", monitors[0].Name)
	assert.Equal(t, 2560, monitors[1].X)

	sel, ok := app.Session().Selected()
	require.True(t, ok)
	assert.Equal(t, "DP-1", sel.Name)

	// a second Load without force does not query again
	require.NoError(t, app.Load(ctx, false))
	assert.Len(t, f.runner.calls, 1)

	pending, _ := app.DraftInfo()
	assert.False(t, pending)
}

func TestDraftSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app().Edit(ctx, moveHDMI(-1920, 180)))

	next := f.app()
	require.NoError(t, next.Load(ctx, false))

	hdmi, ok := next.Session().MonitorByName("HDMI-A-1")
	require.True(t, ok)
	assert.Equal(t, -1920, hdmi.X)
	assert.Equal(t, 180, hdmi.Y)

	sel, ok := next.Session().Selected()
	require.True(t, ok)
	assert.Equal(t, "HDMI-A-1", sel.Name)

	pending, skipped := next.DraftInfo()
	assert.True(t, pending)
	assert.Empty(t, skipped)
}

func TestSaveWritesConfAndHistory(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()

	require.NoError(t, app.Edit(ctx, moveHDMI(3000, 200)))

	entry, err := app.Save(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, f.cfg.MonitorsConfPath, entry.Path)

	data, err := os.ReadFile(f.cfg.MonitorsConfPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "monitor = HDMI-A-1, 1920x1080@60.00, 3000x200")
	assert.Contains(t, string(data), "monitor = DP-1, 2560x1440@143.91, 0x0")

	history, err := app.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry.ID, history[0].ID)

	_, ok, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	pending, _ := app.DraftInfo()
	assert.False(t, pending)
}

func TestSaveWithRejectedLiveApplyChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.cfg.ApplyLive = true
	app := f.app()
	ctx := context.Background()

	require.NoError(t, app.Edit(ctx, moveHDMI(3000, 200)))

	_, err := app.Save(ctx)
	var perErr *arrangement.PersistError
	require.ErrorAs(t, err, &perErr)
	assert.Contains(t, f.runner.calls, "hyprctl keyword monitor DP-1, 2560x1440@143.91, 0x0, 1.00")

	_, statErr := os.Stat(f.cfg.MonitorsConfPath)
	assert.True(t, os.IsNotExist(statErr))

	history, err := app.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	draft, ok, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3000, draft.Monitors[1].X)

	pending, _ := app.DraftInfo()
	assert.True(t, pending)
}

func TestResetDropsDraft(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()

	require.NoError(t, app.Edit(ctx, moveHDMI(3000, 200)))
	require.NoError(t, app.Reset(ctx))

	hdmi, ok := app.Session().MonitorByName("HDMI-A-1")
	require.True(t, ok)
	assert.Equal(t, 2560, hdmi.X)
	assert.Equal(t, 0, hdmi.Y)

	_, ok, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreFromHistory(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()

	require.NoError(t, app.Edit(ctx, moveHDMI(3000, 200)))
	saved, err := app.Save(ctx)
	require.NoError(t, err)

	require.NoError(t, app.Edit(ctx, moveHDMI(0, 1440)))

	entry, unmatched, err := app.Restore(ctx, saved.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, saved.ID, entry.ID)
	assert.Empty(t, unmatched)

	hdmi, _ := app.Session().MonitorByName("HDMI-A-1")
	assert.Equal(t, 3000, hdmi.X)
	assert.Equal(t, 200, hdmi.Y)

	draft, ok, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3000, draft.Monitors[1].X)

	_, _, err = app.Restore(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "desk.toml")

	require.NoError(t, app.Edit(ctx, moveHDMI(-1920, 0)))
	p, err := app.Export(ctx, "desk", path)
	require.NoError(t, err)
	assert.Equal(t, "desk", p.Name)
	assert.Len(t, p.Monitors, 2)

	require.NoError(t, app.Reset(ctx))
	hdmi, _ := app.Session().MonitorByName("HDMI-A-1")
	require.Equal(t, 2560, hdmi.X)

	imported, unmatched, err := app.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "desk", imported.Name)
	assert.Empty(t, unmatched)

	hdmi, _ = app.Session().MonitorByName("HDMI-A-1")
	assert.Equal(t, -1920, hdmi.X)

	_, _, err = app.Import(ctx, filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	require.NoError(t, app.Load(context.Background(), false))

	tests := map[string]struct {
		ref  string
		want string
	}{
		"by name":   {ref: "HDMI-A-1", want: "HDMI-A-1"},
		"by id":     {ref: "1", want: "HDMI-A-1"},
		"selection": {ref: "", want: "DP-1"},
		"padded":    {ref: " DP-1 ", want: "DP-1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := app.Resolve(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Name)
		})
	}

	_, err := app.Resolve("DP-7")
	assert.ErrorIs(t, err, arrangement.ErrUnknownMonitor)
	_, err = app.Resolve("9")
	assert.ErrorIs(t, err, arrangement.ErrUnknownMonitor)
}

func TestLoadWithoutHyprland(t *testing.T) {
	f := newFixture(t)
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")

	err := f.app().Load(context.Background(), false)
	var invErr *arrangement.InventoryError
	assert.ErrorAs(t, err, &invErr)
}

func TestStatusReportsDraftAndLastSave(t *testing.T) {
	f := newFixture(t)
	app := f.app()
	ctx := context.Background()

	out, err := app.Status(ctx, false)
	require.NoError(t, err)
	assert.Contains(t, out, "Draft: none")
	assert.Contains(t, out, "Last save: never")
	assert.Contains(t, out, "DP-1")

	require.NoError(t, app.Edit(ctx, moveHDMI(3000, 200)))
	out, err = app.Status(ctx, true)
	require.NoError(t, err)
	assert.Contains(t, out, "Draft: 2 monitors")

	saved, err := app.Save(ctx)
	require.NoError(t, err)
	out, err = app.Status(ctx, true)
	require.NoError(t, err)
	assert.Contains(t, out, shortID(saved.ID))
	assert.Contains(t, out, "Snap threshold: 200px, live apply: off")
	assert.NotContains(t, out, "Log files")
}

func TestStatusListsLogFiles(t *testing.T) {
	f := newFixture(t)
	logDir := t.TempDir()
	logger := utility.NewLoggerWithDir("file", logDir, utility.INFO)
	t.Cleanup(func() { _ = logger.Close() })

	app := NewAppWith(logger, f.cfg, f.runner, f.store)
	out, err := app.Status(context.Background(), true)
	require.NoError(t, err)
	assert.Contains(t, out, "Log files: "+filepath.Join(logDir, "current.log"))
}
