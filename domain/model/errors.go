package model

import (
	"errors"
	"fmt"
)

var (
	ErrFilesystem         = errors.New("directory cannot be read")
	ErrNoPrinter          = errors.New("no default printer configured")
	ErrPrintSubmission    = errors.New("print submission failed")
	ErrSessionInProgress  = errors.New("a print session is already running")
	ErrJournalNotFound    = errors.New("session journal file not found")
	ErrJournalCorrupted   = errors.New("session journal file corrupted")
	ErrInvalidChecksum    = errors.New("invalid file checksum")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmptyTokenSubject  = errors.New("token subject is empty")
	ErrDirectoryRequired  = errors.New("directory is required")
	ErrAlreadyWatchingDir = errors.New("a directory is already being watched")
)

// FilesystemError reports a directory that is missing or unreadable
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

func (e *FilesystemError) Is(target error) bool { return target == ErrFilesystem }

// PrintSubmissionError reports a file the OS refused to print
type PrintSubmissionError struct {
	Path    string
	Printer string
	Err     error
}

func (e *PrintSubmissionError) Error() string {
	return fmt.Sprintf("failed to print %s on %q: %v", e.Path, e.Printer, e.Err)
}

func (e *PrintSubmissionError) Unwrap() error { return e.Err }

func (e *PrintSubmissionError) Is(target error) bool { return target == ErrPrintSubmission }
