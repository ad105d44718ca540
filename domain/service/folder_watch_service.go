package service

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type folderWatchService struct {
	watcher       outbound.FileWatcher
	sessions      inbound.PrintSessionService
	handlers      inbound.SessionHandlers
	logger        outbound.Logger
	flushInterval time.Duration

	mu      sync.RWMutex
	folder  string
	pending map[string]bool
	printed map[string]bool
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	done    chan struct{}
}

// NewFolderWatchService prints PDF files dropped into a watched folder.
// Arrivals are batched and flushed every flushInterval through RunFiles.
func NewFolderWatchService(
	watcher outbound.FileWatcher,
	sessions inbound.PrintSessionService,
	handlers inbound.SessionHandlers,
	logger outbound.Logger,
	flushInterval time.Duration,
) inbound.FolderWatchService {
	if flushInterval <= 0 {
		flushInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &folderWatchService{
		watcher:       watcher,
		sessions:      sessions,
		handlers:      handlers,
		logger:        logger,
		flushInterval: flushInterval,
		pending:       make(map[string]bool),
		printed:       make(map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
}

// begins processing watcher events; cancelling ctx stops flushing like Stop
func (s *folderWatchService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("Folder watch service already running")
		return nil
	}

	s.logger.Info("Starting folder watch service")

	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)

	go s.processEvents()

	s.running = true
	return nil
}

func (s *folderWatchService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}

	s.logger.Info("Stopping folder watch service")

	s.cancel()
	s.running = false
	s.mu.Unlock()

	<-s.done

	if err := s.watcher.Stop(); err != nil {
		s.logger.Error("Error stopping file watcher", "error", err)
		return err
	}

	s.logger.Info("Folder watch service stopped")
	return nil
}

// Files already in dir when the watch starts are left alone.
func (s *folderWatchService) WatchFolder(ctx context.Context, dir string) error {
	if dir == "" {
		return model.ErrDirectoryRequired
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		s.logger.Error("Failed to get absolute path", "path", dir, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folder == absPath {
		s.logger.Debug("Already watching folder", "path", absPath)
		return nil
	}
	if s.folder != "" {
		return model.ErrAlreadyWatchingDir
	}

	if err := s.watcher.Watch(ctx, absPath); err != nil {
		s.logger.Error("Failed to watch folder", "path", absPath, "error", err)
		return &model.FilesystemError{Path: absPath, Err: err}
	}

	s.folder = absPath
	s.logger.Info("Watching folder for new PDF files", "path", absPath)
	return nil
}

func (s *folderWatchService) IsWatching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running && s.watcher.IsWatching()
}

func (s *folderWatchService) GetWatchedFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.folder
}

// returns the names waiting for the next flush, sorted
func (s *folderWatchService) PendingFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.pending)
}

// handles watcher events and periodic flushes in a loop
func (s *folderWatchService) processEvents() {
	defer close(s.done)

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	events := s.watcher.Events()
	errs := s.watcher.Errors()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Folder event processing stopped")
			return

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(event)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Error("File watcher error", "error", err)

		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *folderWatchService) handleEvent(event outbound.FileChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Base(event.FilePath)
	if filepath.Dir(event.FilePath) != s.folder || !model.IsPDFName(name) {
		s.logger.Debug("Ignoring file event", "path", event.FilePath, "type", event.EventType)
		return
	}

	switch event.EventType {
	case outbound.FileCreated, outbound.FileModified:
		if s.printed[name] {
			s.logger.Debug("File already printed during this watch", "name", name)
			return
		}
		if !s.pending[name] {
			s.logger.Info("New PDF file queued", "name", name, "type", event.EventType)
		}
		s.pending[name] = true

	case outbound.FileDeleted:
		delete(s.pending, name)
		delete(s.printed, name)
		s.logger.Debug("PDF file removed from folder", "name", name)

	default:
		s.logger.Debug("Ignoring file event type", "type", event.EventType, "path", event.FilePath)
	}
}

// hands pending files to a session when none is running
func (s *folderWatchService) flush() {
	s.mu.RLock()
	ctx := s.ctx
	folder := s.folder
	names := sortedKeys(s.pending)
	s.mu.RUnlock()

	if len(names) == 0 {
		return
	}

	// shutting down: a session started now would only skip every file
	if ctx.Err() != nil {
		s.logger.Debug("Folder watch stopping, keeping files pending", "pending", len(names))
		return
	}

	if state := s.sessions.State(); state != model.StateIdle {
		s.logger.Debug("Session busy, keeping files pending", "state", state, "pending", len(names))
		return
	}

	session, err := s.sessions.RunFiles(ctx, folder, names, s.handlers)
	if err != nil {
		if errors.Is(err, model.ErrSessionInProgress) {
			return
		}
		s.logger.Error("Failed to start print session for watched folder",
			"folder", folder, "pending", len(names), "error", err)
		return
	}

	s.mu.Lock()
	for _, name := range names {
		delete(s.pending, name)
		s.printed[name] = true
	}
	s.mu.Unlock()

	s.logger.Info("Watched folder batch dispatched", "session", session.ID, "file_count", len(names))
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
