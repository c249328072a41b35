package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

func setupWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	source, root := setupRoot(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "water-access"), 0o755))

	watcher, err := NewWatcher(source, WithDebounce(25*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Close() })
	return watcher, root
}

func waitForEvent(t *testing.T, events <-chan domain.FileEvent) domain.FileEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file event")
		return domain.FileEvent{}
	}
}

func TestWatchEmitsWriteEvents(t *testing.T) {
	watcher, root := setupWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(root, "water-access", "proposal.txt")
	writeFile(t, path, "proposal body")

	ev := waitForEvent(t, events)
	assert.Equal(t, "water-access", ev.Project)
	assert.Equal(t, path, ev.Path)
}

func TestWatchIgnoresRootLevelFiles(t *testing.T) {
	watcher, root := setupWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "stray.txt"), "not a project file")
	writeFile(t, filepath.Join(root, "water-access", "proposal.txt"), "proposal")

	ev := waitForEvent(t, events)
	assert.Equal(t, "water-access", ev.Project)
}

func TestWatchClosesOnCancel(t *testing.T) {
	watcher, _ := setupWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("event channel did not close after cancel")
	}
}

func TestWatcherCloseStopsPending(t *testing.T) {
	watcher, _ := setupWatcher(t)
	require.NoError(t, watcher.Close())
	assert.NoError(t, watcher.Close())
}
