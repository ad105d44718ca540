package printer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// DryRun accepts jobs without printing. File names listed in failures are
// refused so failure reporting can be exercised end to end.
type DryRun struct {
	printer  string
	failures map[string]bool
	logger   outbound.Logger

	mu   sync.Mutex
	jobs []model.PrintJob
}

func NewDryRun(printer string, failures []string, logger outbound.Logger) *DryRun {
	if printer == "" {
		printer = "dry-run"
	}
	set := make(map[string]bool, len(failures))
	for _, name := range failures {
		set[name] = true
	}
	return &DryRun{printer: printer, failures: set, logger: logger}
}

func (d *DryRun) DefaultPrinter(ctx context.Context) (string, error) {
	return d.printer, nil
}

func (d *DryRun) Submit(ctx context.Context, printer, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.failures[filepath.Base(path)] {
		return fmt.Errorf("dry-run: refused %s", filepath.Base(path))
	}

	d.mu.Lock()
	d.jobs = append(d.jobs, model.PrintJob{Printer: printer, Path: path})
	d.mu.Unlock()

	d.logger.Info("Dry-run print", "printer", printer, "path", path)
	return nil
}

// Jobs returns accepted submissions in order
func (d *DryRun) Jobs() []model.PrintJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.PrintJob(nil), d.jobs...)
}

var _ outbound.Printer = (*DryRun)(nil)
