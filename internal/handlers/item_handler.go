package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"rentalBack/internal/models"
	"rentalBack/internal/services"
	"rentalBack/utils"
)

const maxImageSize = 10 << 20 // 10 MB

type ItemHandler struct {
	Service *services.ItemService
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	item.UserID = userID
	created, err := h.Service.CreateItem(r.Context(), item)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("CreateItem error: %v", err)
		http.Error(w, "Failed to create item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// UploadItemImage stores one image on S3 and returns its public URL.
// The client attaches the URL to the item on create/update.
func (h *ItemHandler) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("user_id").(int); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Image file missing", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	fileName := fmt.Sprintf("%s_%s", uuid.New().String(), header.Filename)
	url, err := utils.UploadFileToS3(data, fileName, "items")
	if err != nil {
		log.Printf("UploadItemImage error: %v", err)
		http.Error(w, "Failed to upload image", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"name": fileName, "path": url})
}

func (h *ItemHandler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	item, err := h.Service.GetItemByID(r.Context(), itemID)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("GetItemByID error: %v", err)
		http.Error(w, "Failed to get item", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *ItemHandler) GetFilteredItems(w http.ResponseWriter, r *http.Request) {
	var filter models.ItemFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.GetFilteredItems(r.Context(), filter)
	if err != nil {
		log.Printf("GetFilteredItems error: %v", err)
		http.Error(w, "Failed to get items", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *ItemHandler) GetMyItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	items, err := h.Service.GetItemsByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("GetMyItems error: %v", err)
		http.Error(w, "Failed to get items", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(items)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	item.ID = itemID
	updated, err := h.Service.UpdateItem(r.Context(), userID, item)
	if err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("UpdateItem error: %v", err)
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

func (h *ItemHandler) WithdrawItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	if err := h.Service.WithdrawItem(r.Context(), userID, itemID); err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("WithdrawItem error: %v", err)
		http.Error(w, "Failed to withdraw item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ItemHandler) RepublishItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}
	if err := h.Service.RepublishItem(r.Context(), userID, itemID); err != nil {
		if respondError(w, err) {
			return
		}
		log.Printf("RepublishItem error: %v", err)
		http.Error(w, "Failed to republish item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
