package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// maxTopFailures caps the failure ranking
const maxTopFailures = 5

type statsService struct {
	journal outbound.JournalRepository
	logger  outbound.Logger
}

func NewStatsService(journal outbound.JournalRepository, logger outbound.Logger) inbound.StatsService {
	return &statsService{
		journal: journal,
		logger:  logger,
	}
}

func (s *statsService) GetStats(ctx context.Context) (*inbound.PrintStats, error) {
	reports, err := s.journal.List(ctx, 0)
	if err != nil {
		s.logger.Error("Failed to read journal for stats", "error", err)
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	stats := &inbound.PrintStats{
		Printers:    make(map[string]int),
		TopFailures: []inbound.FailureCount{},
		Resources:   collectResources(),
	}

	failures := make(map[string]int)
	var total time.Duration

	for _, report := range reports {
		stats.Sessions++
		stats.Printers[report.Printer]++
		total += report.Duration()

		if stats.LastCompletedAt == nil || report.CompletedAt.After(*stats.LastCompletedAt) {
			completed := report.CompletedAt
			stats.LastCompletedAt = &completed
		}

		for _, res := range report.Results {
			stats.Files++
			switch res.Status {
			case model.ResultSuccess:
				stats.Succeeded++
			case model.ResultSkipped:
				stats.Skipped++
			default:
				stats.Failed++
				failures[res.Path]++
			}
		}
	}

	if stats.Sessions > 0 {
		stats.AverageDuration = total / time.Duration(stats.Sessions)
	}
	stats.TopFailures = topFailures(failures, maxTopFailures)

	s.logger.Debug("Stats computed", "sessions", stats.Sessions, "files", stats.Files)
	return stats, nil
}

// most failed first, ties by path
func topFailures(counts map[string]int, limit int) []inbound.FailureCount {
	result := make([]inbound.FailureCount, 0, len(counts))
	for path, count := range counts {
		result = append(result, inbound.FailureCount{Path: path, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Path < result[j].Path
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func collectResources() inbound.ResourceStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return inbound.ResourceStats{
		Timestamp:   time.Now().Unix(),
		MemoryUsage: int64(memStats.Alloc),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    memStats.NumGC,
		HeapObjects: memStats.HeapObjects,
	}
}
