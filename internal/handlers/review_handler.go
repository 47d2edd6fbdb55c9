package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
)

type ReviewHandler struct {
	Service *services.ReviewService
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	review, err := h.Service.CreateReview(r.Context(), userID, req)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("CreateReview error: %v", err)
		http.Error(w, "Failed to create review", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(review)
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reviewID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || reviewID == 0 {
		http.Error(w, "Invalid or missing review ID", http.StatusBadRequest)
		return
	}
	var req models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	review, err := h.Service.UpdateReview(r.Context(), reviewID, userID, req.Rating, req.Content)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("UpdateReview error: %v", err)
		http.Error(w, "Failed to update review", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(review)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	reviewID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid review ID", http.StatusBadRequest)
		return
	}
	if err := h.Service.DeleteReview(r.Context(), reviewID, userID); err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("DeleteReview error: %v", err)
		http.Error(w, "Failed to delete review", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ReviewHandler) GetReviewsByItemID(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(r.URL.Query().Get(":item_id"))
	if err != nil {
		http.Error(w, "Invalid item_id", http.StatusBadRequest)
		return
	}
	reviews, err := h.Service.GetReviewsByItemID(r.Context(), itemID)
	if err != nil {
		http.Error(w, "Failed to get reviews", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(reviews)
}
