package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// Mock implementations
type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}

type mockLister struct {
	mu      sync.Mutex
	entries map[string][]model.DirEntry
	err     error
	calls   int
}

func (m *mockLister) ListDir(ctx context.Context, path string) ([]model.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries[path], nil
}

func (m *mockLister) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) DefaultPrinter(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// records every submission in order; paths listed in fail return an error
type recordingSubmitter struct {
	mu       sync.Mutex
	fail     map[string]error
	calls    []model.PrintJob
	gate     chan struct{} // when set, each Submit waits for a token
	onSubmit func(path string)
	events   *eventLog
}

func (s *recordingSubmitter) Submit(ctx context.Context, printer, path string) error {
	if s.gate != nil {
		<-s.gate
	}
	if s.onSubmit != nil {
		s.onSubmit(path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, model.PrintJob{Printer: printer, Path: path})
	if s.events != nil {
		s.events.add("submit:" + path)
	}
	return s.fail[path]
}

func (s *recordingSubmitter) jobs() []model.PrintJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PrintJob(nil), s.calls...)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls int
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, printer string, paths []string, observe inbound.ResultObserver) []model.PrintResult {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return nil
}

func (d *recordingDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type mockMetrics struct {
	mu          sync.Mutex
	sessions    map[model.SessionOutcome]int
	submissions map[model.ResultStatus]int
	dispatches  int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		sessions:    make(map[model.SessionOutcome]int),
		submissions: make(map[model.ResultStatus]int),
	}
}

func (m *mockMetrics) RecordSession(outcome model.SessionOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[outcome]++
}

func (m *mockMetrics) RecordSubmission(status model.ResultStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[status]++
}

func (m *mockMetrics) ObserveDispatch(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches++
}

func (m *mockMetrics) sessionCount(outcome model.SessionOutcome) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[outcome]
}

func (m *mockMetrics) submissionCount(status model.ResultStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[status]
}

// callback queue drained explicitly by the test goroutine
type manualQueue struct {
	mu     sync.Mutex
	fns    []func()
	closed bool
	events *eventLog
}

func (q *manualQueue) Post(fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.fns = append(q.fns, fn)
	if q.events != nil {
		q.events.add("post")
	}
	return true
}

func (q *manualQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

func (q *manualQueue) drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

type memoryJournal struct {
	mu      sync.Mutex
	reports []*model.SessionReport
}

func (j *memoryJournal) Append(ctx context.Context, report *model.SessionReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, report)
	return nil
}

func (j *memoryJournal) List(ctx context.Context, limit int) ([]*model.SessionReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*model.SessionReport(nil), j.reports...), nil
}

func (j *memoryJournal) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.reports)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

var (
	_ outbound.DirectoryLister   = (*mockLister)(nil)
	_ outbound.PrinterResolver   = (*mockResolver)(nil)
	_ outbound.PrintSubmitter    = (*recordingSubmitter)(nil)
	_ outbound.MetricsRecorder   = (*mockMetrics)(nil)
	_ outbound.CallbackQueue     = (*manualQueue)(nil)
	_ outbound.JournalRepository = (*memoryJournal)(nil)
	_ inbound.PrintDispatcher    = (*recordingDispatcher)(nil)
)
