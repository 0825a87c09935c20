package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := New(path, debounce, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return w
}

func waitChange(t *testing.T, w *Watcher) bool {
	t.Helper()
	select {
	case <-w.Changes():
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func TestReportsWritesToWatchedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habit_data", "habits.json")
	w := startWatcher(t, path, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{"2024-06-01": true}`), 0o644))
	require.True(t, waitChange(t, w), "expected a change notification")
}

func TestBurstsCoalesce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	w := startWatcher(t, path, 150*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	}
	require.True(t, waitChange(t, w))
	select {
	case <-w.Changes():
		t.Fatal("burst produced more than one notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, filepath.Join(dir, "habits.json"), 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "habits.log"), []byte("x"), 0o644))
	select {
	case <-w.Changes():
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestChangesClosedWhenContextDone(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "habits.json"), 0, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	_, ok := <-w.Changes()
	require.False(t, ok)
}
