package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"potracker/internal/service"
)

type syncResponse struct {
	Started  bool     `json:"started"`
	Imported int      `json:"imported"`
	Warnings []string `json:"warnings,omitempty"`
}

// TriggerSyncHandler runs a manual sync pass. A pass already in flight makes
// the request a no-op rather than queuing a second one.
func TriggerSyncHandler(sync *service.Sync) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := sync.Run(r.Context())
		if err != nil {
			if errors.Is(err, service.ErrSyncAlreadyRunning) {
				writeJSON(w, http.StatusOK, syncResponse{Started: false})
				return
			}
			slog.Error("sync pass failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, syncResponse{
			Started:  true,
			Imported: result.Imported,
			Warnings: result.Warnings,
		})
	}
}
