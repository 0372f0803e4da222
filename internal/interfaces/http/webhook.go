package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"centavo/internal/domain/item"
)

const webhookSyncTimeout = 5 * time.Minute

// WebhookHandler receives change notifications from the bank data provider
// and kicks off a targeted sync for the item they name.
type WebhookHandler struct {
	syncs  SyncService
	secret []byte
}

func NewWebhookHandler(syncs SyncService, secret string) *WebhookHandler {
	return &WebhookHandler{syncs: syncs, secret: []byte(secret)}
}

type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// HandleProviderWebhook verifies the request signature and triggers a sync
// for the named item. The provider retries non-2xx responses, so everything
// past signature validation answers 200: a failed sync is our problem to
// retry on the next scheduled run, not the provider's.
func (h *WebhookHandler) HandleProviderWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(body, r.Header.Get("X-Webhook-Signature")) {
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Webhook: invalid payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if payload.WebhookType != "TRANSACTIONS" || payload.ItemID == "" {
		log.Printf("Webhook: ignoring %s/%s", payload.WebhookType, payload.WebhookCode)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Respond before the sync finishes; the provider only cares that we
	// received the webhook.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookSyncTimeout)
		defer cancel()

		changed, err := h.syncs.SyncOneByExternalID(ctx, payload.ItemID)
		if err != nil {
			if errors.Is(err, item.ErrItemNotFound) {
				return
			}
			log.Printf("Webhook: sync failed for provider item %s: %v", payload.ItemID, err)
			return
		}
		log.Printf("Webhook: synced provider item %s, %d transactions changed", payload.ItemID, changed)
	}()

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
