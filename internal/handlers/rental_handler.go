package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
)

type RentalHandler struct {
	Service *services.RentalService
}

func (h *RentalHandler) RequestRental(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req models.RentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	rental, err := h.Service.RequestRental(r.Context(), userID, req)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("RequestRental error: %v", err)
		http.Error(w, "Failed to create rental request", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rental)
}

func (h *RentalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentalID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid rental ID", http.StatusBadRequest)
		return
	}
	var decision models.RentalDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	rental, err := h.Service.Decide(r.Context(), rentalID, userID, decision)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("Decide error: %v", err)
		http.Error(w, "Failed to process decision", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rental)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentalID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid rental ID", http.StatusBadRequest)
		return
	}
	rental, err := h.Service.Cancel(r.Context(), rentalID, userID)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("Cancel error: %v", err)
		http.Error(w, "Failed to cancel rental", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rental)
}

func (h *RentalHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentalID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid rental ID", http.StatusBadRequest)
		return
	}
	rental, err := h.Service.Start(r.Context(), rentalID, userID)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("Start error: %v", err)
		http.Error(w, "Failed to start rental", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rental)
}

func (h *RentalHandler) CompleteReturn(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentalID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid rental ID", http.StatusBadRequest)
		return
	}
	rental, err := h.Service.CompleteReturn(r.Context(), rentalID, userID)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("CompleteReturn error: %v", err)
		http.Error(w, "Failed to complete return", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rental)
}

func (h *RentalHandler) GetMyRentals(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentals, err := h.Service.GetMyRentals(r.Context(), userID)
	if err != nil {
		log.Printf("GetMyRentals error: %v", err)
		http.Error(w, "Failed to get rentals", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rentals)
}

func (h *RentalHandler) GetReceivedRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	rentals, err := h.Service.GetReceivedRequests(r.Context(), userID)
	if err != nil {
		log.Printf("GetReceivedRequests error: %v", err)
		http.Error(w, "Failed to get received requests", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rentals)
}
