package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"potracker/internal/service"
)

// SyncWorker owns the auto-sync timer. The timer is an explicit task with a
// cancellation context, re-armed via Reload whenever settings change; an
// in-flight pass is never interrupted, cancellation only stops new passes.
type SyncWorker struct {
	sync     *service.Sync
	settings *service.SettingsService
	reload   chan struct{}
}

func NewSyncWorker(sync *service.Sync, settings *service.SettingsService) *SyncWorker {
	return &SyncWorker{
		sync:     sync,
		settings: settings,
		reload:   make(chan struct{}, 1),
	}
}

// Reload tells the worker to re-read sync settings and re-arm its timer.
// Non-blocking; a pending reload is enough.
func (w *SyncWorker) Reload() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	slog.Info("starting sync worker")

	for {
		settings, err := w.settings.GetSyncSettings(ctx)
		if err != nil {
			slog.Error("failed to read sync settings", "error", err)
			settings.AutoSync = false
		}

		if !settings.AutoSync {
			select {
			case <-ctx.Done():
				slog.Info("sync worker stopped")
				return
			case <-w.reload:
				continue
			}
		}

		interval := time.Duration(settings.IntervalMinutes) * time.Minute
		ticker := time.NewTicker(interval)
		slog.Info("auto sync armed", "interval", interval)

		rearm := false
		for !rearm {
			select {
			case <-ctx.Done():
				ticker.Stop()
				slog.Info("sync worker stopped")
				return
			case <-w.reload:
				rearm = true
			case <-ticker.C:
				if _, err := w.sync.Run(ctx); err != nil && !errors.Is(err, service.ErrSyncAlreadyRunning) {
					slog.Error("auto sync failed", "error", err)
				}
			}
		}
		ticker.Stop()
	}
}
