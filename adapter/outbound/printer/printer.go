// Package printer submits PDF files to operating system print queues.
package printer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// DefaultSubmitTimeout bounds one submission when none is configured
const DefaultSubmitTimeout = 30 * time.Second

// CommandRunner executes an external program and returns its combined output
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Named pins every session to one printer instead of the OS default.
type Named struct {
	outbound.PrintSubmitter
	name string
}

func WithName(submitter outbound.PrintSubmitter, name string) *Named {
	return &Named{PrintSubmitter: submitter, name: strings.TrimSpace(name)}
}

func (n *Named) DefaultPrinter(ctx context.Context) (string, error) {
	return n.name, nil
}

func submitTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultSubmitTimeout
	}
	return d
}

var _ outbound.Printer = (*Named)(nil)
