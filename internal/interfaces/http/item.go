package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"centavo/internal/domain/item"
	"centavo/internal/shared/middleware"
)

// ItemService is the slice of the item service the HTTP layer needs.
type ItemService interface {
	Link(ctx context.Context, params item.CreateParams) (*item.Item, error)
	ListItems(ctx context.Context, userID int64) ([]*item.Item, error)
	Unlink(ctx context.Context, id, userID int64) error
}

type ItemHandler struct {
	items ItemService
}

func NewItemHandler(items ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

type LinkItemRequest struct {
	ProviderItemID  string `json:"providerItemId"`
	AccessToken     string `json:"accessToken"`
	InstitutionID   string `json:"institutionId"`
	InstitutionName string `json:"institutionName"`
}

// HandleItems serves GET (list) and POST (link) on /api/items.
func (h *ItemHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.listItems(w, r, userID)
	case http.MethodPost:
		h.linkItem(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ItemHandler) listItems(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := h.items.ListItems(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing items for user %d: %v", userID, err)
		http.Error(w, "Failed to list items", http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []*item.Item{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *ItemHandler) linkItem(w http.ResponseWriter, r *http.Request, userID int64) {
	var req LinkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProviderItemID == "" || req.AccessToken == "" {
		http.Error(w, "providerItemId and accessToken are required", http.StatusBadRequest)
		return
	}

	created, err := h.items.Link(r.Context(), item.CreateParams{
		UserID:          userID,
		ProviderItemID:  req.ProviderItemID,
		AccessToken:     req.AccessToken,
		InstitutionID:   req.InstitutionID,
		InstitutionName: req.InstitutionName,
	})
	if err != nil {
		log.Printf("Error linking item for user %d: %v", userID, err)
		http.Error(w, "Failed to link item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// HandleItemByID serves DELETE (unlink) on /api/items/{id}.
func (h *ItemHandler) HandleItemByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/items/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	if err := h.items.Unlink(r.Context(), id, userID); err != nil {
		if errors.Is(err, item.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		log.Printf("Error unlinking item %d for user %d: %v", id, userID, err)
		http.Error(w, "Failed to unlink item", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
