package store

import (
	"context"
	"log/slog"
	"time"
)

const retentionWorkerInterval = time.Hour

// StartRetentionWorker runs a background goroutine that periodically removes
// users whose planner data has been idle longer than retention. A zero
// retention disables the worker.
func StartRetentionWorker(ctx context.Context, repo Repository, retention time.Duration) {
	if retention <= 0 {
		slog.Info("Retention worker disabled")
		return
	}
	ticker := time.NewTicker(retentionWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", retentionWorkerInterval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				purgeInactive(ctx, repo, retention)
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func purgeInactive(ctx context.Context, repo Repository, retention time.Duration) int64 {
	deleted, err := repo.DeleteInactive(ctx, retention)
	if err != nil {
		slog.Error("Retention worker failed to purge inactive users", "error", err)
		return 0
	}
	if deleted > 0 {
		slog.Info("Retention worker purged inactive users", "count", deleted)
	}
	return deleted
}
