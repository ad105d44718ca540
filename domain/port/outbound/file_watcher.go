package outbound

import (
	"context"
)

const (
	FileCreated  = "create"
	FileModified = "modify"
	FileDeleted  = "delete"
)

// represents a file system change event
type FileChangeEvent struct {
	FilePath  string `json:"filePath"`  // Path to the changed file
	EventType string `json:"eventType"` // Type of event: "create", "modify", "delete"
}

// defines operations for monitoring directories for changes
type FileWatcher interface {
	// starts monitoring a directory for changes to its direct children
	Watch(ctx context.Context, dir string) error

	// stops watching all directories and releases resources
	Stop() error

	// returns a channel for receiving file change events
	Events() <-chan FileChangeEvent

	// returns a channel for receiving file watcher errors
	Errors() <-chan error

	// returns true if the watcher is currently monitoring a directory
	IsWatching() bool

	// returns a list of currently watched directories
	GetWatchedPaths() []string
}
