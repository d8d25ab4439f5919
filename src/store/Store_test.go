package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
	"github.com/ln64-git/hyprarrange/src/utility"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "state.db"), utility.NewLoggerTo(io.Discard, utility.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleMonitors() []arrangement.Monitor {
	return []arrangement.Monitor{
		{ID: 0, Name: "DP-1", X: 0, Y: 0, Width: 2560, Height: 1440, RefreshRate: 143.91, Scale: 1.25,
			AvailableModes: []string{"2560x1440@143.91Hz"}},
		{ID: 1, Name: "HDMI-A-1", X: 2048, Y: 0, Width: 1920, Height: 1080, RefreshRate: 60, Scale: 1, Disabled: true},
	}
}

func TestDraftRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveDraft(ctx, sampleMonitors(), "DP-1"))
	got, ok, err := s.LoadDraft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleMonitors(), got.Monitors)
	assert.Equal(t, "DP-1", got.Selected)
	assert.False(t, got.UpdatedAt.IsZero())

	updated := sampleMonitors()
	updated[1].X = 2560
	require.NoError(t, s.SaveDraft(ctx, updated, "HDMI-A-1"))
	got, _, err = s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2560, got.Monitors[1].X)
	assert.Equal(t, "HDMI-A-1", got.Selected)

	require.NoError(t, s.ClearDraft(ctx))
	_, ok, err = s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := s.RecordSave(ctx, "/tmp/monitors.conf", sampleMonitors())
	require.NoError(t, err)
	moved := sampleMonitors()
	moved[1].X = 2560
	second, err := s.RecordSave(ctx, "/tmp/monitors.conf", moved)
	require.NoError(t, err)

	entries, err := s.ListHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, 2560, entries[0].Monitors[1].X)
	assert.True(t, base.Add(time.Minute).Equal(entries[1].SavedAt))

	limited, err := s.ListHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestGetHistoryByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry, err := s.RecordSave(ctx, "/tmp/monitors.conf", sampleMonitors())
	require.NoError(t, err)

	got, err := s.GetHistory(ctx, entry.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, sampleMonitors(), got.Monitors)

	_, err = s.GetHistory(ctx, "zzzzzzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetHistory(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetHistoryAmbiguousPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// uuids are hex, so a one-character prefix collides quickly
	seen := map[byte]bool{}
	var dup byte
	for i := 0; i < 40 && dup == 0; i++ {
		e, err := s.RecordSave(ctx, "/tmp/monitors.conf", sampleMonitors())
		require.NoError(t, err)
		if seen[e.ID[0]] {
			dup = e.ID[0]
		}
		seen[e.ID[0]] = true
	}
	require.NotZero(t, dup)

	_, err := s.GetHistory(ctx, string(dup))
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	logger := utility.NewLoggerTo(io.Discard, utility.ERROR)
	ctx := context.Background()

	s, err := Open(ctx, path, logger)
	require.NoError(t, err)
	require.NoError(t, s.SaveDraft(ctx, sampleMonitors(), ""))
	_, err = s.RecordSave(ctx, "/tmp/monitors.conf", sampleMonitors())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, logger)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := s.ListHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "", utility.NewLoggerTo(io.Discard, utility.ERROR))
	assert.Error(t, err)
}
