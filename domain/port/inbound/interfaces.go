package inbound

import (
	"context"

	"github.com/ajkula/GoBatchPrint/domain/model"
)

// FileEnumerator lists the PDF files directly inside a directory
type FileEnumerator interface {
	// List rescans directory on every call and returns the matching names in
	// lister order. A missing or unreadable directory yields *model.FilesystemError.
	List(ctx context.Context, directory string) ([]string, error)
}

// ResultObserver is called after each file of a batch was attempted
type ResultObserver func(result model.PrintResult)

// PrintDispatcher submits a batch of files to one printer, one after another
type PrintDispatcher interface {
	// Dispatch attempts every path in order and returns one result per path.
	// observe may be nil.
	Dispatch(ctx context.Context, printer string, paths []string, observe ResultObserver) []model.PrintResult
}

// SessionHandlers receive the asynchronous events of a print session.
// Both run on the CallbackQueue of the session service, never on the worker.
type SessionHandlers struct {
	// OnFailure is posted as soon as a file fails, optional
	OnFailure func(result model.PrintResult)

	// OnComplete is posted exactly once after every file was attempted
	OnComplete func(report *model.SessionReport)
}

// PrintSessionService orchestrates printer lookup, enumeration and dispatch
type PrintSessionService interface {
	// Run prints every PDF directly inside directory on the default printer.
	// It returns once the batch is handed to the worker, or with outcome
	// no_files when there is nothing to print.
	Run(ctx context.Context, directory string, handlers SessionHandlers) (*model.Session, error)

	// RunFiles prints the given names from directory without enumerating it
	RunFiles(ctx context.Context, directory string, names []string, handlers SessionHandlers) (*model.Session, error)

	// State returns the current lifecycle state
	State() model.SessionState

	// LastReport returns the report of the most recent completed session, or nil
	LastReport() *model.SessionReport
}

// FolderWatchService prints PDF files as they appear in a watched directory
type FolderWatchService interface {
	Start(ctx context.Context) error
	Stop() error
	WatchFolder(ctx context.Context, dir string) error
	IsWatching() bool
	GetWatchedFolder() string
	PendingFiles() []string
}
