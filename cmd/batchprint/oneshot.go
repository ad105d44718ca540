package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
)

func listFolder(ctx context.Context, a *app, dir string, stdout, stderr io.Writer) int {
	names, err := a.enumerator.List(ctx, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describeError(err))
		return exitSessionError
	}
	writeFileList(stdout, dir, names)
	return exitOK
}

// printFolder runs one session and blocks on the event loop until it completes
func printFolder(ctx context.Context, a *app, dir string, stdout, stderr io.Writer) int {
	// shown to the user; Run scans the folder again
	names, err := a.enumerator.List(ctx, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describeError(err))
		return exitSessionError
	}
	writeFileList(stdout, dir, names)

	var report *model.SessionReport
	handlers := inbound.SessionHandlers{
		OnFailure: func(result model.PrintResult) {
			fmt.Fprintf(stderr, "Failed to print %s: %s\n", result.Path, result.Detail)
		},
		OnComplete: func(r *model.SessionReport) {
			report = r
			writeSummary(stdout, r)
			a.loop.Stop()
		},
	}

	session, err := a.sessions.Run(ctx, dir, handlers)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", describeError(err))
		return exitSessionError
	}
	if session.Outcome == model.OutcomeNoFiles {
		fmt.Fprintln(stdout, "Nothing to print.")
		return exitOK
	}

	fmt.Fprintf(stdout, "Sending %d file(s) to %s...\n", len(session.Files), session.Printer)
	a.loop.Run(ctx)

	if report == nil {
		fmt.Fprintln(stderr, "Interrupted before every file was sent to the printer")
		return exitSessionError
	}
	if len(report.Failures()) > 0 {
		return exitFileFailures
	}
	return exitOK
}

func writeFileList(w io.Writer, dir string, names []string) {
	fmt.Fprintf(w, "%d PDF file(s) in %s\n", len(names), dir)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func writeSummary(w io.Writer, r *model.SessionReport) {
	failed := len(r.Failures())
	if failed == 0 {
		fmt.Fprintf(w, "Print jobs have been sent to %s (%d file(s) in %s)\n",
			r.Printer, r.Succeeded(), r.Duration().Round(time.Millisecond))
		return
	}
	fmt.Fprintf(w, "Print jobs sent to %s: %d succeeded, %d failed\n", r.Printer, r.Succeeded(), failed)
	for _, res := range r.Failures() {
		fmt.Fprintf(w, "  %s [%s] %s\n", res.Path, res.Status, res.Detail)
	}
}

// describeError names the precondition that stopped the session
func describeError(err error) string {
	var fsErr *model.FilesystemError
	switch {
	case errors.Is(err, model.ErrDirectoryRequired):
		return "no folder given"
	case errors.As(err, &fsErr):
		return fmt.Sprintf("cannot read folder %s: %v", fsErr.Path, fsErr.Err)
	case errors.Is(err, model.ErrNoPrinter):
		return "no default printer is configured on this system"
	case errors.Is(err, model.ErrSessionInProgress):
		return "a print session is already running"
	default:
		return err.Error()
	}
}
