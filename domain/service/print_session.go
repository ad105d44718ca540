package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type printSessionService struct {
	printers   outbound.PrinterResolver
	enumerator inbound.FileEnumerator
	dispatcher inbound.PrintDispatcher
	callbacks  outbound.CallbackQueue
	journal    outbound.JournalRepository
	metrics    outbound.MetricsRecorder
	logger     outbound.Logger
	rootCtx    context.Context

	mu         sync.RWMutex
	state      model.SessionState
	lastReport *model.SessionReport
	workers    sync.WaitGroup
}

// NewPrintSessionService wires a session orchestrator. Workers run under rootCtx;
// cancelling it makes a running batch skip its remaining files.
// journal may be nil.
func NewPrintSessionService(
	rootCtx context.Context,
	printers outbound.PrinterResolver,
	enumerator inbound.FileEnumerator,
	dispatcher inbound.PrintDispatcher,
	callbacks outbound.CallbackQueue,
	journal outbound.JournalRepository,
	metrics outbound.MetricsRecorder,
	logger outbound.Logger,
) inbound.PrintSessionService {
	return &printSessionService{
		printers:   printers,
		enumerator: enumerator,
		dispatcher: dispatcher,
		callbacks:  callbacks,
		journal:    journal,
		metrics:    metrics,
		logger:     logger,
		rootCtx:    rootCtx,
		state:      model.StateIdle,
	}
}

func (s *printSessionService) Run(
	ctx context.Context,
	directory string,
	handlers inbound.SessionHandlers,
) (*model.Session, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	printer, err := s.resolvePrinter(ctx)
	if err != nil {
		s.setState(model.StateIdle)
		return nil, err
	}

	s.setState(model.StateEnumerating)

	// second scan of the folder; the list shown to the user may be stale by now
	names, err := s.enumerator.List(ctx, directory)
	if err != nil {
		s.setState(model.StateIdle)
		return nil, err
	}

	return s.start(directory, printer, names, handlers), nil
}

func (s *printSessionService) RunFiles(
	ctx context.Context,
	directory string,
	names []string,
	handlers inbound.SessionHandlers,
) (*model.Session, error) {
	if directory == "" {
		return nil, &model.FilesystemError{Path: directory, Err: model.ErrDirectoryRequired}
	}

	if err := s.begin(); err != nil {
		return nil, err
	}

	printer, err := s.resolvePrinter(ctx)
	if err != nil {
		s.setState(model.StateIdle)
		return nil, err
	}

	return s.start(directory, printer, append([]string(nil), names...), handlers), nil
}

func (s *printSessionService) State() model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *printSessionService) LastReport() *model.SessionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// waits for a running worker to finish its batch
func (s *printSessionService) Cleanup() {
	s.logger.Info("Waiting for print worker to finish")
	s.workers.Wait()
}

// moves idle -> resolving_printer or refuses
func (s *printSessionService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.StateIdle {
		s.logger.Warn("Print session refused", "state", s.state)
		return model.ErrSessionInProgress
	}

	s.state = model.StateResolvingPrinter
	return nil
}

func (s *printSessionService) setState(state model.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *printSessionService) resolvePrinter(ctx context.Context) (string, error) {
	printer, err := s.printers.DefaultPrinter(ctx)
	if err != nil {
		s.logger.Error("Failed to resolve default printer", "error", err)
		if errors.Is(err, model.ErrNoPrinter) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", model.ErrNoPrinter, err)
	}

	if printer == "" {
		s.logger.Error("Default printer query returned an empty name")
		return "", model.ErrNoPrinter
	}

	s.logger.Debug("Resolved default printer", "printer", printer)
	return printer, nil
}

func (s *printSessionService) start(
	directory, printer string,
	names []string,
	handlers inbound.SessionHandlers,
) *model.Session {
	session := &model.Session{
		ID:        uuid.New().String(),
		Directory: directory,
		Printer:   printer,
		Files:     names,
		StartedAt: time.Now(),
	}

	if len(names) == 0 {
		session.Outcome = model.OutcomeNoFiles
		s.metrics.RecordSession(session.Outcome)
		s.setState(model.StateIdle)
		s.logger.Info("No PDF files to print", "directory", directory, "session", session.ID)
		return session
	}

	session.Outcome = model.OutcomeDispatched
	s.metrics.RecordSession(session.Outcome)
	s.setState(model.StateDispatching)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(directory, name)
	}

	s.logger.Info("Dispatching print session",
		"session", session.ID, "directory", directory, "printer", printer, "file_count", len(paths))

	snapshot := *session
	snapshot.Files = append([]string(nil), names...)

	s.workers.Add(1)
	go s.dispatch(snapshot, paths, handlers)

	return session
}

// worker body; the only goroutine that talks to the print subsystem for this session
func (s *printSessionService) dispatch(session model.Session, paths []string, handlers inbound.SessionHandlers) {
	defer s.workers.Done()

	started := time.Now()
	results := s.dispatcher.Dispatch(s.rootCtx, session.Printer, paths, func(result model.PrintResult) {
		if result.Failed() && handlers.OnFailure != nil {
			s.post(func() { handlers.OnFailure(result) })
		}
	})
	s.metrics.ObserveDispatch(time.Since(started))

	report := &model.SessionReport{
		Session:     session,
		Results:     results,
		CompletedAt: time.Now(),
	}

	s.record(report)

	s.mu.Lock()
	s.state = model.StateCompleted
	s.lastReport = report
	s.mu.Unlock()

	s.logger.Info("Print session completed",
		"session", session.ID, "submitted", report.Succeeded(), "failed", len(report.Failures()),
		"elapsed", report.Duration().String())

	delivered := s.post(func() {
		s.setState(model.StateIdle)
		if handlers.OnComplete != nil {
			handlers.OnComplete(report)
		}
	})
	if !delivered {
		s.setState(model.StateIdle)
	}
}

func (s *printSessionService) record(report *model.SessionReport) {
	if s.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.journal.Append(ctx, report); err != nil {
		s.logger.Error("Failed to append session to journal", "session", report.ID, "error", err)
	}
}

func (s *printSessionService) post(fn func()) bool {
	if !s.callbacks.Post(fn) {
		s.logger.Warn("Callback queue closed, dropping session event")
		return false
	}
	return true
}
