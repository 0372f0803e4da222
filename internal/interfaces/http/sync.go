package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"centavo/internal/domain/item"
	"centavo/internal/domain/sync"
	"centavo/internal/shared/middleware"
)

// SyncService is the slice of the sync service the HTTP layer needs.
type SyncService interface {
	SyncItem(ctx context.Context, itemID, userID int64) (int, error)
	SyncAllForUser(ctx context.Context, userID int64) (int, error)
	SyncOneByExternalID(ctx context.Context, providerItemID string) (int, error)
}

type SyncHandler struct {
	syncs SyncService
}

func NewSyncHandler(syncs SyncService) *SyncHandler {
	return &SyncHandler{syncs: syncs}
}

type TriggerSyncRequest struct {
	ItemID int64 `json:"itemId,omitempty"`
}

type TriggerSyncResponse struct {
	Changed int `json:"changed"`
}

// HandleTriggerSync starts a sync for the authenticated user. An empty body
// (or itemId 0) syncs every linked item; a specific itemId syncs just that one.
func (h *SyncHandler) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req TriggerSyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	var (
		changed int
		err     error
	)
	if req.ItemID != 0 {
		changed, err = h.syncs.SyncItem(r.Context(), req.ItemID, userID)
	} else {
		changed, err = h.syncs.SyncAllForUser(r.Context(), userID)
	}

	if err != nil {
		switch {
		case errors.Is(err, item.ErrItemNotFound):
			http.Error(w, "Item not found", http.StatusNotFound)
		case errors.Is(err, sync.ErrSyncInProgress):
			http.Error(w, "Sync already in progress", http.StatusConflict)
		default:
			log.Printf("Error syncing for user %d: %v", userID, err)
			http.Error(w, "Sync failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TriggerSyncResponse{Changed: changed})
}
