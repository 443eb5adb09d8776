package staging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dwfx2pdf/internal/logging"
)

// CleanStale removes staged files older than maxAge and returns the paths it
// removed. Errors are logged and skipped; a half-finished sweep is fine.
func CleanStale(dir string, maxAge time.Duration, logger *slog.Logger) []string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read staging directory", logging.String("dir", dir), logging.Error(err))
		}
		return nil
	}

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			logger.Warn("remove stale staged file", logging.String("path", path), logging.Error(err))
			continue
		}
		removed = append(removed, path)
		logger.Info("removed stale staged file",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())))
	}
	return removed
}
