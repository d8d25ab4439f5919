package desktopmonitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *ConfigWatcher) (<-chan fsnotify.Event, context.CancelFunc) {
	t.Helper()
	w.debounce = 20 * time.Millisecond

	events := make(chan fsnotify.Event, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(e fsnotify.Event) { events <- e })
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	return events, cancel
}

func TestConfigWatcherReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitors.conf")
	events, _ := startWatcher(t, NewConfigWatcher(quietLogger(), path))

	require.NoError(t, os.WriteFile(path, []byte("monitor = DP-1, preferred, auto, 1\n"), 0644))

	select {
	case e := <-events:
		assert.Equal(t, path, filepath.Clean(e.Name))
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestConfigWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	events, _ := startWatcher(t, NewConfigWatcher(quietLogger(), filepath.Join(dir, "monitors.conf")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspaces.conf"), []byte("x"), 0644))

	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestConfigWatcherSkipNext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitors.conf")
	w := NewConfigWatcher(quietLogger(), path)
	events, _ := startWatcher(t, w)

	w.SkipNext()
	require.NoError(t, os.WriteFile(path, []byte("ours"), 0644))

	select {
	case e := <-events:
		t.Fatalf("own write reported: %v", e)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0644))
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("external change not reported")
	}
}

func TestConfigWatcherCancelSkip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitors.conf")
	w := NewConfigWatcher(quietLogger(), path)
	events, _ := startWatcher(t, w)

	// a failed save arms the skip and then withdraws it
	w.SkipNext()
	w.CancelSkip()

	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0644))
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("external change dropped")
	}
}

func TestConfigWatcherCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "monitors.conf")
	events, _ := startWatcher(t, NewConfigWatcher(quietLogger(), path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestConfigWatcherUnusableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	w := NewConfigWatcher(quietLogger(), filepath.Join(blocker, "monitors.conf"))
	assert.Error(t, w.Watch(context.Background(), func(fsnotify.Event) {}))
}
