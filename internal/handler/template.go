package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"potracker/internal/model"
	"potracker/internal/service"
)

func GetTemplateHandler(templates *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tpl, err := templates.Get(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	}
}

func UpdateTemplateHandler(templates *service.TemplateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tpl model.InvoiceTemplate
		if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := templates.Update(r.Context(), tpl); err != nil {
			if errors.Is(err, service.ErrInvalidColor) {
				http.Error(w, "colors must be hex values like #4f46e5", http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tpl)
	}
}
