//go:build windows

package printer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

var (
	winspool              = windows.NewLazySystemDLL("winspool.drv")
	procGetDefaultPrinter = winspool.NewProc("GetDefaultPrinterW")
)

// SystemPrinter uses the spooler default printer and the shell "print" verb
// of the registered PDF handler.
type SystemPrinter struct {
	timeout time.Duration
	logger  outbound.Logger
}

func NewSystemPrinter(logger outbound.Logger, timeout time.Duration) *SystemPrinter {
	return &SystemPrinter{timeout: submitTimeout(timeout), logger: logger}
}

// DefaultPrinter returns "" with no error when no default printer is set.
func (p *SystemPrinter) DefaultPrinter(ctx context.Context) (string, error) {
	if err := procGetDefaultPrinter.Find(); err != nil {
		return "", fmt.Errorf("query default printer: %w", err)
	}

	var size uint32
	r, _, callErr := procGetDefaultPrinter.Call(0, uintptr(unsafe.Pointer(&size)))
	if r == 0 {
		if errors.Is(callErr, windows.ERROR_FILE_NOT_FOUND) {
			return "", nil
		}
		if !errors.Is(callErr, windows.ERROR_INSUFFICIENT_BUFFER) {
			return "", fmt.Errorf("query default printer: %w", callErr)
		}
	}
	if size == 0 {
		return "", nil
	}

	buf := make([]uint16, size)
	r, _, callErr = procGetDefaultPrinter.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if r == 0 {
		return "", fmt.Errorf("query default printer: %w", callErr)
	}
	return windows.UTF16ToString(buf), nil
}

// Submit hands the file to the shell. The call returns once the handler
// accepted the request, not when the spooler finished.
func (p *SystemPrinter) Submit(ctx context.Context, printer, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	verb, err := windows.UTF16PtrFromString("print")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(abs)
	if err != nil {
		return err
	}
	args, err := windows.UTF16PtrFromString(fmt.Sprintf(`/d:"%s"`, printer))
	if err != nil {
		return err
	}
	cwd, err := windows.UTF16PtrFromString(filepath.Dir(abs))
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- windows.ShellExecute(0, verb, file, args, cwd, windows.SW_HIDE)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("shell print: %w", err)
		}
		p.logger.Debug("Print request accepted by shell", "printer", printer, "path", abs)
		return nil
	case <-time.After(p.timeout):
		return fmt.Errorf("shell print: timed out after %s", p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ outbound.Printer = (*SystemPrinter)(nil)
