package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

const testDebounce = 50 * time.Millisecond

func newTestWatcher(t *testing.T) outbound.FileWatcher {
	t.Helper()
	watcher, err := NewFSWatcher(testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })
	return watcher
}

func nextEvent(t *testing.T, watcher outbound.FileWatcher, timeout time.Duration) (outbound.FileChangeEvent, bool) {
	t.Helper()
	select {
	case event := <-watcher.Events():
		return event, true
	case err := <-watcher.Errors():
		t.Fatalf("Unexpected error from watcher: %v", err)
	case <-time.After(timeout):
	}
	return outbound.FileChangeEvent{}, false
}

func TestFSWatcher_BasicOperations(t *testing.T) {
	tempDir := t.TempDir()
	watcher := newTestWatcher(t)

	assert.False(t, watcher.IsWatching())
	assert.Empty(t, watcher.GetWatchedPaths())

	require.NoError(t, watcher.Watch(context.Background(), tempDir))

	assert.True(t, watcher.IsWatching())
	assert.Equal(t, []string{tempDir}, watcher.GetWatchedPaths())

	// watching again is a no-op
	require.NoError(t, watcher.Watch(context.Background(), tempDir))
	assert.Len(t, watcher.GetWatchedPaths(), 1)
}

func TestFSWatcher_FilePathWatchesParent(t *testing.T) {
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "existing.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0644))

	watcher := newTestWatcher(t)
	require.NoError(t, watcher.Watch(context.Background(), file))

	assert.Equal(t, []string{tempDir}, watcher.GetWatchedPaths())
}

func TestFSWatcher_MissingDirectory(t *testing.T) {
	watcher := newTestWatcher(t)

	err := watcher.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
	assert.False(t, watcher.IsWatching())
}

func TestFSWatcher_CreateIsDebounced(t *testing.T) {
	tempDir := t.TempDir()
	watcher := newTestWatcher(t)
	require.NoError(t, watcher.Watch(context.Background(), tempDir))

	path := filepath.Join(tempDir, "scan.pdf")
	file, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = file.WriteString("chunk ")
		require.NoError(t, err)
	}
	require.NoError(t, file.Close())

	event, ok := nextEvent(t, watcher, 2*time.Second)
	require.True(t, ok, "expected a settled event")
	assert.Equal(t, path, event.FilePath)
	assert.Equal(t, outbound.FileCreated, event.EventType)

	// the writes collapsed into the single create
	_, ok = nextEvent(t, watcher, 4*testDebounce)
	assert.False(t, ok)
}

func TestFSWatcher_DeleteIsImmediate(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "old.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	watcher := newTestWatcher(t)
	require.NoError(t, watcher.Watch(context.Background(), tempDir))

	require.NoError(t, os.Remove(path))

	event, ok := nextEvent(t, watcher, 2*time.Second)
	require.True(t, ok, "expected a delete event")
	assert.Equal(t, path, event.FilePath)
	assert.Equal(t, outbound.FileDeleted, event.EventType)
}

func TestFSWatcher_Stop(t *testing.T) {
	tempDir := t.TempDir()
	watcher, err := NewFSWatcher(testDebounce)
	require.NoError(t, err)
	require.NoError(t, watcher.Watch(context.Background(), tempDir))

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.IsWatching())

	// channels are closed once stopped
	_, open := <-watcher.Events()
	assert.False(t, open)
	_, open = <-watcher.Errors()
	assert.False(t, open)

	// second stop is harmless
	assert.NoError(t, watcher.Stop())
	assert.Error(t, watcher.Watch(context.Background(), tempDir))
}

func TestFSWatcher_OverflowFlushesPendingFiles(t *testing.T) {
	watcher, err := NewFSWatcher(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })

	fw := watcher.(*FsWatcher)
	fw.mu.Lock()
	fw.maxPending = 2
	fw.mu.Unlock()

	fw.debounceEvent("/hot/a.pdf", outbound.FileCreated)
	fw.debounceEvent("/hot/b.pdf", outbound.FileModified)
	fw.debounceEvent("/hot/c.pdf", outbound.FileCreated)
	fw.debounceEvent("/hot/a.pdf", outbound.FileModified)

	fw.cleanupExpiredDebouncers()

	var got []outbound.FileChangeEvent
	for i := 0; i < 3; i++ {
		event, ok := nextEvent(t, watcher, time.Second)
		require.True(t, ok, "expected a flushed event")
		got = append(got, event)
	}

	assert.Equal(t, []outbound.FileChangeEvent{
		{FilePath: "/hot/a.pdf", EventType: outbound.FileCreated},
		{FilePath: "/hot/b.pdf", EventType: outbound.FileModified},
		{FilePath: "/hot/c.pdf", EventType: outbound.FileCreated},
	}, got)

	fw.mu.RLock()
	assert.Empty(t, fw.debouncer)
	fw.mu.RUnlock()
}

func TestFSWatcher_UnderCapKeepsDebouncing(t *testing.T) {
	watcher, err := NewFSWatcher(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })

	fw := watcher.(*FsWatcher)
	fw.debounceEvent("/hot/a.pdf", outbound.FileCreated)
	fw.cleanupExpiredDebouncers()

	_, ok := nextEvent(t, watcher, 100*time.Millisecond)
	assert.False(t, ok)
}
