package service

import (
	"context"
	"errors"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type fileEnumerator struct {
	lister outbound.DirectoryLister
	logger outbound.Logger
}

func NewFileEnumerator(lister outbound.DirectoryLister, logger outbound.Logger) inbound.FileEnumerator {
	return &fileEnumerator{
		lister: lister,
		logger: logger,
	}
}

func (e *fileEnumerator) List(ctx context.Context, directory string) ([]string, error) {
	if directory == "" {
		return nil, &model.FilesystemError{Path: directory, Err: model.ErrDirectoryRequired}
	}

	entries, err := e.lister.ListDir(ctx, directory)
	if err != nil {
		e.logger.Error("Failed to list directory", "directory", directory, "error", err)

		var fsErr *model.FilesystemError
		if errors.As(err, &fsErr) {
			return nil, err
		}
		return nil, &model.FilesystemError{Path: directory, Err: err}
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir || !model.IsPDFName(entry.Name) {
			continue
		}
		files = append(files, entry.Name)
	}

	e.logger.Debug("Enumerated PDF files", "directory", directory, "entries", len(entries), "pdf_count", len(files))
	return files, nil
}
