package handler

import (
	"encoding/json"
	"net/http"

	"potracker/internal/model"
	"potracker/internal/service"
)

func GetSettingsHandler(settings *service.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := settings.GetSyncSettings(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// UpdateSettingsHandler persists new sync settings and pokes the worker so
// the auto-sync timer is re-armed with them.
func UpdateSettingsHandler(settings *service.SettingsService, reload func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var s model.SyncSettings
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := settings.UpdateSyncSettings(r.Context(), s)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		reload()
		writeJSON(w, http.StatusOK, updated)
	}
}
