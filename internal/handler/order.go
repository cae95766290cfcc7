package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"potracker/internal/service"
)

func CreateOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateOrderInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		order, err := orders.Create(r.Context(), in)
		if err != nil {
			if errors.Is(err, service.ErrNoOrderLines) {
				http.Error(w, "order needs at least one line", http.StatusBadRequest)
				return
			}
			slog.Error("order create failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, order)
	}
}

func ListOrdersHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := orders.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func DeleteOrderHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := orders.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func UpdateOrderStatusHandler(orders *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		err := orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type confirmRequest struct {
	Code string `json:"code"`
}

// ConfirmOrderHandler redeems a confirmation code scanned at pickup. A
// repeat redemption is answered with the original claim, flagged so the UI
// shows an already-claimed warning instead of the success screen.
func ConfirmOrderHandler(orders *service.OrderService, mailer service.InvoiceSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Code == "" {
			http.Error(w, "code required", http.StatusBadRequest)
			return
		}

		result, err := orders.ConfirmByCode(r.Context(), req.Code)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				http.Error(w, "no order with that code", http.StatusNotFound)
				return
			}
			slog.Error("confirm failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Best effort only; the confirmation is already committed.
		if !result.AlreadyClaimed {
			order := result.Order
			_, err := mailer.Send(r.Context(), service.Message{
				To:      order.CustomerEmail,
				ToName:  order.CustomerName,
				Subject: "Pickup confirmed",
				HTML: fmt.Sprintf("<p>Hi %s, your pre-order <strong>%s</strong> has been confirmed. See you at pickup!</p>",
					order.CustomerName, order.ConfirmationCode),
			})
			if err != nil {
				slog.Warn("confirmation email failed", "order", order.ID, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}
