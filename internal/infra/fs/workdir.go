package fs

import (
	"fmt"
	"os"

	logging "fundrace/internal/infra/log"

	"go.uber.org/zap"
)

// WorkDir is a scratch directory owned by one run. Remove deletes it and
// everything inside.
type WorkDir struct {
	Path string
}

// NewWorkDir creates a scratch directory under parent (os.TempDir() when empty).
func NewWorkDir(parent, runID string) (*WorkDir, error) {
	dir, err := os.MkdirTemp(parent, "fundrace-"+runID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &WorkDir{Path: dir}, nil
}

// Remove deletes the directory; errors are logged, not returned, so it can be deferred.
func (w *WorkDir) Remove() {
	if w == nil || w.Path == "" {
		return
	}
	if err := os.RemoveAll(w.Path); err != nil {
		logging.LogWarn("Failed to remove work directory", zap.String("path", w.Path), zap.Error(err))
		return
	}
	logging.LogDebug("Work directory removed", zap.String("path", w.Path))
}
