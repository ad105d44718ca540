package model

import (
	"strings"
	"time"
)

// PDFSuffix is the lowercased suffix a file name must end with to be printed
const PDFSuffix = ".pdf"

// IsPDFName reports whether name ends with PDFSuffix, ignoring case
func IsPDFName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), PDFSuffix)
}

// DirEntry is one immediate child of a directory as seen by a lister
type DirEntry struct {
	Name  string // Base name of the entry
	IsDir bool   // True for directories and symlinks resolving to one
}

// PrintJob pairs a destination printer with a file to print.
// It only exists for the duration of one submission.
type PrintJob struct {
	Printer string `json:"printer"`
	Path    string `json:"path"`
}

// ResultStatus is the outcome of a single submission attempt
type ResultStatus string

const (
	// ResultSuccess means the OS print subsystem accepted the job
	ResultSuccess ResultStatus = "success"

	// ResultFailure means the submission call returned an error
	ResultFailure ResultStatus = "failure"

	// ResultSkipped means the worker stopped before the file was attempted
	ResultSkipped ResultStatus = "skipped"
)

// PrintResult records what happened to one file of a batch
type PrintResult struct {
	Path   string       `json:"path"`             // Full path of the file
	Status ResultStatus `json:"status"`           // Submission outcome
	Detail string       `json:"detail,omitempty"` // Human readable error, empty on success
}

// Failed returns true unless the file was accepted by the print subsystem
func (r PrintResult) Failed() bool {
	return r.Status != ResultSuccess
}

// SessionOutcome is what Run reports synchronously
type SessionOutcome string

const (
	// OutcomeNoFiles means the directory held no PDF file; nothing was printed
	OutcomeNoFiles SessionOutcome = "no_files"

	// OutcomeDispatched means a worker is submitting the files
	OutcomeDispatched SessionOutcome = "dispatched"
)

// SessionState is the position of a print session in its lifecycle
type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateResolvingPrinter SessionState = "resolving_printer"
	StateEnumerating      SessionState = "enumerating"
	StateDispatching      SessionState = "dispatching"
	StateCompleted        SessionState = "completed"
)

// Session describes a started print session
type Session struct {
	ID        string         `json:"id"`
	Directory string         `json:"directory"`
	Printer   string         `json:"printer"`
	Files     []string       `json:"files"`
	Outcome   SessionOutcome `json:"outcome"`
	StartedAt time.Time      `json:"startedAt"`
}

// SessionReport is delivered once, after every file of a session was attempted
type SessionReport struct {
	Session
	Results     []PrintResult `json:"results"`
	CompletedAt time.Time     `json:"completedAt"`
}

// Succeeded counts the files accepted by the print subsystem
func (r *SessionReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the results that were not accepted, in submission order
func (r *SessionReport) Failures() []PrintResult {
	var failed []PrintResult
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Duration is the wall time between start and completion
func (r *SessionReport) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Clone returns a copy that shares no slices with r
func (r *SessionReport) Clone() *SessionReport {
	if r == nil {
		return nil
	}
	c := *r
	c.Files = append([]string(nil), r.Files...)
	c.Results = append([]PrintResult(nil), r.Results...)
	return &c
}
