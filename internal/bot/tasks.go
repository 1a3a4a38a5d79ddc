package bot

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edgard/spamwatch/internal/database"
)

// NewMediaCleanupTask returns a task that deletes photo artifacts older than
// the retention window. Artifacts exist for after-the-fact review of banned
// senders; past the window they only consume disk.
func NewMediaCleanupTask(mediaDir string, retentionDays int, logger *slog.Logger) TaskFunc {
	log := logger.With("task", "media_cleanup")

	return func(ctx context.Context) error {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)

		entries, err := os.ReadDir(mediaDir)
		if err != nil {
			return err
		}

		removed := 0
		for _, entry := range entries {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() || !strings.HasPrefix(entry.Name(), "Photo_") {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				log.WarnContext(ctx, "Failed to stat artifact, skipping", "name", entry.Name(), "error", err)
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}

			path := filepath.Join(mediaDir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.WarnContext(ctx, "Failed to remove expired artifact", "path", path, "error", err)
				continue
			}
			removed++
		}

		log.InfoContext(ctx, "Media cleanup completed", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
		return nil
	}
}

// NewDBMaintenanceTask returns a task that runs periodic database
// maintenance through the store.
func NewDBMaintenanceTask(store database.Store) TaskFunc {
	return func(ctx context.Context) error {
		return store.RunMaintenance(ctx)
	}
}
