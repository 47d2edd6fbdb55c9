package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

// tossErrorStatus propagates client-side provider rejections (expired
// payment key, already-canceled charge) and hides everything else
// behind 502.
func tossErrorStatus(err error) int {
	var tossErr *services.TossError
	if errors.As(err, &tossErr) {
		if tossErr.StatusCode >= 400 && tossErr.StatusCode < 500 {
			return tossErr.StatusCode
		}
	}
	return http.StatusBadGateway
}

func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("user_id").(int); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req models.PaymentConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	payment, err := h.Service.Confirm(r.Context(), req)
	if err != nil {
		if respondError(w, err) {
			return
		}
		var tossErr *services.TossError
		if errors.As(err, &tossErr) {
			http.Error(w, tossErr.Message, tossErrorStatus(err))
			return
		}
		log.Printf("ConfirmPayment error: %v", err)
		http.Error(w, "Failed to confirm payment", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(payment)
}
