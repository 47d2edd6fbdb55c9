package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
)

type UserHandler struct {
	Service *services.UserService
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	user, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("SignUp error: %v", err)
		http.Error(w, "Failed to sign up", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	user, tokens, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("SignIn error: %v", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	tokens, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("Refresh error: %v", err)
		http.Error(w, "Failed to refresh tokens", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(tokens)
}

func (h *UserHandler) UpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.UpdateFCMToken(r.Context(), userID, req.Token); err != nil {
		log.Printf("UpdateFCMToken error: %v", err)
		http.Error(w, "Failed to save token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
