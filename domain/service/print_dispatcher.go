package service

import (
	"context"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type printDispatcher struct {
	submitter outbound.PrintSubmitter
	metrics   outbound.MetricsRecorder
	logger    outbound.Logger
}

func NewPrintDispatcher(
	submitter outbound.PrintSubmitter,
	metrics outbound.MetricsRecorder,
	logger outbound.Logger,
) inbound.PrintDispatcher {
	return &printDispatcher{
		submitter: submitter,
		metrics:   metrics,
		logger:    logger,
	}
}

// Dispatch never runs two submissions at once; a failing file does not stop the batch.
func (d *printDispatcher) Dispatch(
	ctx context.Context,
	printer string,
	paths []string,
	observe inbound.ResultObserver,
) []model.PrintResult {
	results := make([]model.PrintResult, 0, len(paths))

	for _, path := range paths {
		var result model.PrintResult

		if err := ctx.Err(); err != nil {
			result = model.PrintResult{Path: path, Status: model.ResultSkipped, Detail: err.Error()}
			d.logger.Warn("Skipping file, dispatch cancelled", "path", path, "printer", printer)
		} else {
			result = d.submit(ctx, printer, path)
		}

		results = append(results, result)
		d.metrics.RecordSubmission(result.Status)

		if observe != nil {
			observe(result)
		}
	}

	return results
}

func (d *printDispatcher) submit(ctx context.Context, printer, path string) model.PrintResult {
	d.logger.Debug("Submitting print job", "path", path, "printer", printer)

	if err := d.submitter.Submit(ctx, printer, path); err != nil {
		subErr := &model.PrintSubmissionError{Path: path, Printer: printer, Err: err}
		d.logger.Error("Print submission failed", "path", path, "printer", printer, "error", err)
		return model.PrintResult{Path: path, Status: model.ResultFailure, Detail: subErr.Error()}
	}

	d.logger.Info("Print job submitted", "path", path, "printer", printer)
	return model.PrintResult{Path: path, Status: model.ResultSuccess}
}
