package memory

import (
	"context"
	"sync"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// JournalRepository keeps session reports for the life of the process
type JournalRepository struct {
	db         model.JournalDatabase
	maxEntries int
	mutex      sync.RWMutex
}

func NewJournalRepository(maxEntries int) outbound.JournalRepository {
	return &JournalRepository{maxEntries: maxEntries}
}

func (r *JournalRepository) Append(ctx context.Context, report *model.SessionReport) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.db.Reports = append(r.db.Reports, report.Clone())
	r.db.Trim(r.maxEntries)
	return nil
}

// List returns up to limit reports, newest first (limit <= 0 returns all)
func (r *JournalRepository) List(ctx context.Context, limit int) ([]*model.SessionReport, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return newestFirst(r.db.Reports, limit), nil
}

func newestFirst(reports []*model.SessionReport, limit int) []*model.SessionReport {
	n := len(reports)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*model.SessionReport, 0, n)
	for i := len(reports) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, reports[i].Clone())
	}
	return out
}
