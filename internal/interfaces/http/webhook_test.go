package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandleProviderWebhook(t *testing.T) {
	const secret = "webhook-secret"

	t.Run("Valid Signature Triggers Sync", func(t *testing.T) {
		synced := make(chan string, 1)
		syncs := &MockSyncService{
			SyncOneByExternalIDFunc: func(ctx context.Context, providerItemID string) (int, error) {
				synced <- providerItemID
				return 3, nil
			},
		}
		h := NewWebhookHandler(syncs, secret)

		body := `{"webhook_type":"TRANSACTIONS","webhook_code":"SYNC_UPDATES_AVAILABLE","item_id":"provider-item-1"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", signBody(secret, body))

		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		select {
		case got := <-synced:
			if got != "provider-item-1" {
				t.Errorf("synced item = %q, want provider-item-1", got)
			}
		case <-time.After(time.Second):
			t.Fatal("sync was not triggered")
		}
	})

	t.Run("Invalid Signature Rejected", func(t *testing.T) {
		syncs := &MockSyncService{
			SyncOneByExternalIDFunc: func(ctx context.Context, providerItemID string) (int, error) {
				t.Error("sync must not run for an unsigned request")
				return 0, nil
			},
		}
		h := NewWebhookHandler(syncs, secret)

		body := `{"webhook_type":"TRANSACTIONS","item_id":"provider-item-1"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", "deadbeef")

		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("Missing Signature Rejected", func(t *testing.T) {
		h := NewWebhookHandler(&MockSyncService{}, secret)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("Non-Transactions Webhook Acknowledged And Ignored", func(t *testing.T) {
		syncs := &MockSyncService{
			SyncOneByExternalIDFunc: func(ctx context.Context, providerItemID string) (int, error) {
				t.Error("sync must not run for an ITEM webhook")
				return 0, nil
			},
		}
		h := NewWebhookHandler(syncs, secret)

		body := `{"webhook_type":"ITEM","webhook_code":"ERROR","item_id":"provider-item-1"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", signBody(secret, body))

		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})

	t.Run("Malformed Payload Still Acknowledged", func(t *testing.T) {
		h := NewWebhookHandler(&MockSyncService{}, secret)

		body := `not json`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", signBody(secret, body))

		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		h := NewWebhookHandler(&MockSyncService{}, secret)

		req := httptest.NewRequest(http.MethodGet, "/webhooks/provider", nil)
		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rr.Code)
		}
	})

	t.Run("Empty Secret Rejects Everything", func(t *testing.T) {
		h := NewWebhookHandler(&MockSyncService{}, "")

		body := `{"webhook_type":"TRANSACTIONS","item_id":"provider-item-1"}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/provider", strings.NewReader(body))
		req.Header.Set("X-Webhook-Signature", signBody("", body))

		rr := httptest.NewRecorder()
		h.HandleProviderWebhook(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})
}
