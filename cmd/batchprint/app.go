package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ajkula/GoBatchPrint/adapter/inbound/eventloop"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/crypto"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/filesystem"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/logging"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/machineid"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/metrics"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/printer"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/storage"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/storage/memory"
	"github.com/ajkula/GoBatchPrint/config"
	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
	"github.com/ajkula/GoBatchPrint/domain/service"
)

// app holds the wired components shared by every run mode
type app struct {
	cfg        *config.Config
	logger     model.Logger
	loop       *eventloop.Loop
	printers   outbound.Printer
	enumerator inbound.FileEnumerator
	journal    outbound.JournalRepository
	metrics    outbound.MetricsRecorder
	metricsH   http.Handler
	sessions   inbound.PrintSessionService
}

func newLogger(cfg *config.Config) (model.Logger, error) {
	return logging.NewSlogAdapter(cfg)
}

func newApp(rootCtx context.Context, cfg *config.Config, withMetrics bool) (*app, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		loop:   eventloop.New(logger),
	}

	a.printers = newPrinter(cfg, logger)

	a.journal, err = newJournal(cfg, logger)
	if err != nil {
		logger.Shutdown()
		return nil, err
	}

	if withMetrics && cfg.Monitoring.Prometheus {
		recorder := metrics.NewPrometheusRecorder()
		a.metrics = recorder
		a.metricsH = recorder.Handler()
	} else {
		a.metrics = metrics.NoopRecorder{}
	}

	a.enumerator = service.NewFileEnumerator(filesystem.NewLocalLister(logger), logger)
	dispatcher := service.NewPrintDispatcher(a.printers, a.metrics, logger)
	a.sessions = service.NewPrintSessionService(
		rootCtx,
		a.printers,
		a.enumerator,
		dispatcher,
		a.loop,
		a.journal,
		a.metrics,
		logger,
	)

	logger.Info("GoBatchPrint initialized",
		"version", version,
		"backend", cfg.Printer.Backend,
		"journal", cfg.Journal.Engine,
	)
	return a, nil
}

func newPrinter(cfg *config.Config, logger outbound.Logger) outbound.Printer {
	var p outbound.Printer
	if strings.EqualFold(cfg.Printer.Backend, "dry-run") {
		p = printer.NewDryRun(cfg.Printer.Name, cfg.Printer.DryRunFailures, logger)
	} else {
		p = printer.NewSystemPrinter(logger, cfg.Printer.SubmitTimeout)
		if cfg.Printer.Name != "" {
			logger.Info("Using configured printer instead of the OS default", "printer", cfg.Printer.Name)
			p = printer.WithName(p, cfg.Printer.Name)
		}
	}
	return p
}

func newJournal(cfg *config.Config, logger outbound.Logger) (outbound.JournalRepository, error) {
	if strings.EqualFold(cfg.Journal.Engine, "secure") {
		repo, err := storage.NewSecureJournalRepository(
			cfg.Journal.Path,
			cfg.Journal.MaxEntries,
			crypto.NewAESCryptoService(),
			machineid.NewHardwareMachineID(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		return repo, nil
	}
	return memory.NewJournalRepository(cfg.Journal.MaxEntries), nil
}

// close waits for the print worker, then flushes the logger
func (a *app) close() {
	a.loop.Stop()
	if cleanable, ok := a.sessions.(interface{ Cleanup() }); ok {
		cleanable.Cleanup()
	}
	a.logger.Info("GoBatchPrint stopped")
	a.logger.Shutdown()
}
