package filewatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// DefaultDebounce is the quiet period a file must reach before it is reported
const DefaultDebounce = 2 * time.Second

// maxPendingDebounces caps the number of files waiting for their quiet period
const maxPendingDebounces = 1000

type FsWatcher struct {
	watcher      *fsnotify.Watcher
	debounce     time.Duration
	maxPending   int
	events       chan outbound.FileChangeEvent
	errors       chan error
	settled      chan outbound.FileChangeEvent
	debouncer    map[string]*time.Timer
	types        map[string]string
	watchedDirs  map[string]bool
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	closed       chan struct{}
	filterClosed chan struct{}
}

// NewFSWatcher reports PDF drops in watched directories. Creates and writes
// are debounced per file so a copy in progress yields a single event.
func NewFSWatcher(debounce time.Duration) (outbound.FileWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsWatcher{
		watcher:      fsWatcher,
		debounce:     debounce,
		maxPending:   maxPendingDebounces,
		events:       make(chan outbound.FileChangeEvent, 1000),
		errors:       make(chan error, 100),
		settled:      make(chan outbound.FileChangeEvent, 100),
		debouncer:    make(map[string]*time.Timer),
		types:        make(map[string]string),
		watchedDirs:  make(map[string]bool),
		ctx:          ctx,
		cancel:       cancel,
		closed:       make(chan struct{}),
		filterClosed: make(chan struct{}),
	}

	go fw.filterEvents()
	go fw.processSettledEvents()

	return fw, nil
}

// Watch adds a directory. A file path watches its parent directory.
func (fw *FsWatcher) Watch(ctx context.Context, path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.ctx.Err() != nil {
		return fmt.Errorf("watcher is stopped")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	dir := absPath
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	if fw.watchedDirs[dir] {
		return nil
	}

	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fw.watchedDirs[dir] = true
	fw.running = true

	return nil
}

func (fw *FsWatcher) Stop() error {
	fw.mu.Lock()
	if fw.ctx.Err() != nil {
		fw.mu.Unlock()
		return nil
	}

	fw.cancel()
	fw.cleanupDebouncers()
	fw.running = false
	fw.mu.Unlock()

	closeErr := fw.watcher.Close()

	<-fw.filterClosed
	<-fw.closed

	close(fw.events)
	close(fw.errors)

	if closeErr != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", closeErr)
	}
	return nil
}

func (fw *FsWatcher) Events() <-chan outbound.FileChangeEvent {
	return fw.events
}

func (fw *FsWatcher) Errors() <-chan error {
	return fw.errors
}

func (fw *FsWatcher) IsWatching() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

func (fw *FsWatcher) GetWatchedPaths() []string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()

	paths := make([]string, 0, len(fw.watchedDirs))
	for path := range fw.watchedDirs {
		paths = append(paths, path)
	}
	return paths
}

// filterEvents debounces create/write and forwards removals right away
func (fw *FsWatcher) filterEvents() {
	defer close(fw.filterClosed)

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				fw.cancelDebounce(event.Name)
				fw.forward(outbound.FileChangeEvent{FilePath: event.Name, EventType: outbound.FileDeleted})
			case event.Has(fsnotify.Create):
				fw.debounceEvent(event.Name, outbound.FileCreated)
			case event.Has(fsnotify.Write):
				fw.debounceEvent(event.Name, outbound.FileModified)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.ctx.Done():
				return
			}
		}
	}
}

// processSettledEvents publishes debounced events
func (fw *FsWatcher) processSettledEvents() {
	defer close(fw.closed)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event := <-fw.settled:
			fw.forward(event)

		case <-ticker.C:
			fw.cleanupExpiredDebouncers()
		}
	}
}

func (fw *FsWatcher) forward(event outbound.FileChangeEvent) {
	select {
	case fw.events <- event:
	case <-fw.ctx.Done():
	}
}

// debounceEvent restarts the quiet period of a file. A file created and then
// written keeps its create type.
func (fw *FsWatcher) debounceEvent(name, eventType string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.ctx.Err() != nil {
		return
	}

	if timer, exists := fw.debouncer[name]; exists {
		timer.Stop()
		if fw.types[name] == outbound.FileCreated {
			eventType = outbound.FileCreated
		}
	}
	fw.types[name] = eventType

	var timer *time.Timer
	timer = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		if fw.debouncer[name] != timer {
			fw.mu.Unlock()
			return
		}
		delete(fw.debouncer, name)
		delete(fw.types, name)
		fw.mu.Unlock()

		select {
		case fw.settled <- outbound.FileChangeEvent{FilePath: name, EventType: eventType}:
		case <-fw.ctx.Done():
		}
	})
	fw.debouncer[name] = timer
}

func (fw *FsWatcher) cancelDebounce(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.debouncer[name]; exists {
		timer.Stop()
		delete(fw.debouncer, name)
	}
	delete(fw.types, name)
}

// cleanupDebouncers stops and removes all debounce timers
func (fw *FsWatcher) cleanupDebouncers() {
	for _, timer := range fw.debouncer {
		timer.Stop()
	}
	fw.debouncer = make(map[string]*time.Timer)
	fw.types = make(map[string]string)
}

// cleanupExpiredDebouncers bounds the number of live timers. Past the cap the
// pending files are reported right away instead of waiting out their quiet period.
func (fw *FsWatcher) cleanupExpiredDebouncers() {
	fw.mu.Lock()
	if len(fw.debouncer) <= fw.maxPending {
		fw.mu.Unlock()
		return
	}

	pending := make([]outbound.FileChangeEvent, 0, len(fw.debouncer))
	for name := range fw.debouncer {
		pending = append(pending, outbound.FileChangeEvent{FilePath: name, EventType: fw.types[name]})
	}
	fw.cleanupDebouncers()
	fw.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].FilePath < pending[j].FilePath })
	for _, event := range pending {
		fw.forward(event)
	}
}
