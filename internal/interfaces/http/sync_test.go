package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"centavo/internal/domain/item"
	"centavo/internal/domain/sync"
	"centavo/internal/shared/middleware"
)

type MockSyncService struct {
	SyncItemFunc            func(ctx context.Context, itemID, userID int64) (int, error)
	SyncAllForUserFunc      func(ctx context.Context, userID int64) (int, error)
	SyncOneByExternalIDFunc func(ctx context.Context, providerItemID string) (int, error)
}

func (m *MockSyncService) SyncItem(ctx context.Context, itemID, userID int64) (int, error) {
	if m.SyncItemFunc != nil {
		return m.SyncItemFunc(ctx, itemID, userID)
	}
	return 0, nil
}

func (m *MockSyncService) SyncAllForUser(ctx context.Context, userID int64) (int, error) {
	if m.SyncAllForUserFunc != nil {
		return m.SyncAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockSyncService) SyncOneByExternalID(ctx context.Context, providerItemID string) (int, error) {
	if m.SyncOneByExternalIDFunc != nil {
		return m.SyncOneByExternalIDFunc(ctx, providerItemID)
	}
	return 0, nil
}

// authedRequest builds a request whose context carries an authenticated user,
// as the auth middleware would.
func authedRequest(method, target string, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestHandleTriggerSync(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		authed      bool
		mock        func(t *testing.T) *MockSyncService
		wantStatus  int
		wantChanged int
	}{
		{
			name:   "Sync All Without Body",
			method: http.MethodPost,
			authed: true,
			mock: func(t *testing.T) *MockSyncService {
				return &MockSyncService{
					SyncAllForUserFunc: func(ctx context.Context, userID int64) (int, error) {
						if userID != 7 {
							t.Errorf("userID = %d, want 7", userID)
						}
						return 12, nil
					},
					SyncItemFunc: func(ctx context.Context, itemID, userID int64) (int, error) {
						t.Error("SyncItem must not be called without an itemId")
						return 0, nil
					},
				}
			},
			wantStatus:  http.StatusOK,
			wantChanged: 12,
		},
		{
			name:   "Sync Specific Item",
			method: http.MethodPost,
			body:   `{"itemId": 3}`,
			authed: true,
			mock: func(t *testing.T) *MockSyncService {
				return &MockSyncService{
					SyncItemFunc: func(ctx context.Context, itemID, userID int64) (int, error) {
						if itemID != 3 || userID != 7 {
							t.Errorf("SyncItem(%d, %d), want (3, 7)", itemID, userID)
						}
						return 5, nil
					},
				}
			},
			wantStatus:  http.StatusOK,
			wantChanged: 5,
		},
		{
			name:   "Item Not Found",
			method: http.MethodPost,
			body:   `{"itemId": 99}`,
			authed: true,
			mock: func(t *testing.T) *MockSyncService {
				return &MockSyncService{
					SyncItemFunc: func(ctx context.Context, itemID, userID int64) (int, error) {
						return 0, item.ErrItemNotFound
					},
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "Sync In Progress",
			method: http.MethodPost,
			body:   `{"itemId": 3}`,
			authed: true,
			mock: func(t *testing.T) *MockSyncService {
				return &MockSyncService{
					SyncItemFunc: func(ctx context.Context, itemID, userID int64) (int, error) {
						return 0, sync.ErrSyncInProgress
					},
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "Internal Failure",
			method: http.MethodPost,
			authed: true,
			mock: func(t *testing.T) *MockSyncService {
				return &MockSyncService{
					SyncAllForUserFunc: func(ctx context.Context, userID int64) (int, error) {
						return 0, errors.New("db down")
					},
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "Wrong Method",
			method:     http.MethodGet,
			authed:     true,
			mock:       func(t *testing.T) *MockSyncService { return &MockSyncService{} },
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "Unauthenticated",
			method:     http.MethodPost,
			authed:     false,
			mock:       func(t *testing.T) *MockSyncService { return &MockSyncService{} },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Malformed Body",
			method:     http.MethodPost,
			body:       `{"itemId": `,
			authed:     true,
			mock:       func(t *testing.T) *MockSyncService { return &MockSyncService{} },
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSyncHandler(tt.mock(t))

			var req *http.Request
			if tt.authed {
				req = authedRequest(tt.method, "/api/sync", tt.body, 7)
			} else if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/api/sync", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/api/sync", nil)
			}

			rr := httptest.NewRecorder()
			h.HandleTriggerSync(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var resp TriggerSyncResponse
				if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Changed != tt.wantChanged {
					t.Errorf("changed = %d, want %d", resp.Changed, tt.wantChanged)
				}
			}
		})
	}
}
