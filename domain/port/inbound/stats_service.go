package inbound

import (
	"context"
	"time"
)

// PrintStats summarises the session journal
type PrintStats struct {
	Sessions        int            `json:"sessions"`
	Files           int            `json:"files"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	AverageDuration time.Duration  `json:"averageDurationNs"`
	LastCompletedAt *time.Time     `json:"lastCompletedAt,omitempty"`
	Printers        map[string]int `json:"printers"` // sessions per printer
	TopFailures     []FailureCount `json:"topFailures"`
	Resources       ResourceStats  `json:"resources"`
}

// FailureCount is how often a file failed across the journal
type FailureCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ResourceStats is a snapshot of the process runtime
type ResourceStats struct {
	Timestamp   int64  `json:"timestamp"`
	MemoryUsage int64  `json:"memoryUsage"` // bytes
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gcCycles"`
	HeapObjects uint64 `json:"heapObjects"`
}

type StatsService interface {
	// GetStats aggregates the journal; an empty journal yields zero counts
	GetStats(ctx context.Context) (*PrintStats, error)
}
