package filesystem

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// LocalLister reads directories from the local filesystem.
type LocalLister struct {
	logger outbound.Logger
}

func NewLocalLister(logger outbound.Logger) *LocalLister {
	return &LocalLister{logger: logger}
}

// ListDir returns the entries of path sorted by name. Symlinks are
// classified by their target; a dangling link counts as a file.
func (l *LocalLister) ListDir(ctx context.Context, path string) ([]model.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &model.FilesystemError{Path: path, Err: err}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		l.logger.Debug("Directory read failed", "path", path, "error", err)
		return nil, &model.FilesystemError{Path: path, Err: err}
	}

	result := make([]model.DirEntry, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, entry.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		result = append(result, model.DirEntry{Name: entry.Name(), IsDir: isDir})
	}

	return result, nil
}

var _ outbound.DirectoryLister = (*LocalLister)(nil)
