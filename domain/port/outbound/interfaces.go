package outbound

import (
	"context"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/model"
)

// lists the immediate children of a directory
type DirectoryLister interface {
	// ListDir returns every entry directly inside path, files and directories alike.
	// Directories and symlinks resolving to one carry IsDir.
	ListDir(ctx context.Context, path string) ([]model.DirEntry, error)
}

// answers the OS "get default printer" query
type PrinterResolver interface {
	// DefaultPrinter returns the printer identifier or model.ErrNoPrinter
	DefaultPrinter(ctx context.Context) (string, error)
}

// performs the OS shell print action for one file
type PrintSubmitter interface {
	// Submit hands path to the print subsystem with printer as destination.
	// A nil error only means the job was accepted, not that it printed.
	Submit(ctx context.Context, printer, path string) error
}

// Printer is an OS printing backend
type Printer interface {
	PrinterResolver
	PrintSubmitter
}

// runs callbacks on the execution context that owns user facing state
type CallbackQueue interface {
	// Post schedules fn; returns false when the queue no longer accepts work
	Post(fn func()) bool
}

// defines storage operations for completed print sessions
type JournalRepository interface {
	// appends a completed session report
	Append(ctx context.Context, report *model.SessionReport) error

	// returns up to limit most recent reports, newest first (limit <= 0 returns all)
	List(ctx context.Context, limit int) ([]*model.SessionReport, error)
}

// records print activity for monitoring
type MetricsRecorder interface {
	RecordSession(outcome model.SessionOutcome)
	RecordSubmission(status model.ResultStatus)
	ObserveDispatch(elapsed time.Duration)
}

// encryption primitives for at rest storage
type CryptoService interface {
	Encrypt(data []byte, key [32]byte) (encrypted []byte, nonce []byte, err error)
	Decrypt(encrypted []byte, nonce []byte, key [32]byte) ([]byte, error)
	DeriveKey(secret string) [32]byte
}

// provides a stable per host identifier
type MachineIDService interface {
	GetMachineID() (string, error)
}
