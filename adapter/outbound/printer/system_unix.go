//go:build !windows

package printer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// SystemPrinter talks to CUPS through the lpstat and lp commands.
type SystemPrinter struct {
	run     CommandRunner
	timeout time.Duration
	logger  outbound.Logger
}

func NewSystemPrinter(logger outbound.Logger, timeout time.Duration) *SystemPrinter {
	return newSystemPrinter(execRunner, logger, timeout)
}

func newSystemPrinter(run CommandRunner, logger outbound.Logger, timeout time.Duration) *SystemPrinter {
	return &SystemPrinter{
		run:     run,
		timeout: submitTimeout(timeout),
		logger:  logger,
	}
}

// DefaultPrinter returns "" with no error when CUPS has no default destination.
func (p *SystemPrinter) DefaultPrinter(ctx context.Context) (string, error) {
	out, err := p.run(ctx, "lpstat", "-d")
	name, found := parseDefaultDestination(string(out))
	if found {
		return name, nil
	}
	if err != nil {
		return "", fmt.Errorf("query default printer: %w", err)
	}
	p.logger.Debug("Unrecognized lpstat output", "output", strings.TrimSpace(string(out)))
	return "", nil
}

func (p *SystemPrinter) Submit(ctx context.Context, printer, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, "lp", "-d", printer, "--", path)
	if err != nil {
		return err
	}
	p.logger.Debug("Print job queued", "printer", printer, "path", path, "lp", strings.TrimSpace(string(out)))
	return nil
}

// parseDefaultDestination reads `lpstat -d` output. found is true when the
// output states either a destination or the absence of one.
func parseDefaultDestination(out string) (name string, found bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "no system default destination") {
			return "", true
		}
		if _, rest, ok := strings.Cut(line, "system default destination:"); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

var _ outbound.Printer = (*SystemPrinter)(nil)
