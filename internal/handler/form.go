package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"potracker/internal/model"
	"potracker/internal/service"
)

func RegisterFormHandler(forms *service.FormService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f model.Form
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if f.ID == "" || f.Title == "" {
			http.Error(w, "form id and title required", http.StatusBadRequest)
			return
		}

		if err := forms.Register(r.Context(), f); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

func ListFormsHandler(forms *service.FormService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := forms.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DeleteFormHandler removes a form registration; its ledger entries go with
// it, so a re-registered form starts from a clean dedup slate.
func DeleteFormHandler(forms *service.FormService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := forms.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, service.ErrFormNotFound) {
				http.Error(w, "form not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
