package notification

import (
	"context"
	"fmt"
	"log"

	"centavo/internal/shared/messages"
)

// Service handles device token registration and push delivery
type Service struct {
	repo      Repository
	messenger Messenger
	msgs      *messages.Messages
}

// NewService creates a notification service. messenger may be nil, in which
// case pushes are silently skipped (useful in tests and local development).
func NewService(repo Repository, messenger Messenger, msgs *messages.Messages) *Service {
	if msgs == nil {
		msgs = messages.Default()
	}
	return &Service{repo: repo, messenger: messenger, msgs: msgs}
}

// RegisterDevice registers or refreshes an FCM device token for a user
func (s *Service) RegisterDevice(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}

// UnregisterDevice deactivates a device token
func (s *Service) UnregisterDevice(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.repo.DeactivateToken(ctx, token)
}

// SendSyncComplete notifies a user's devices that a sync brought in new
// transactions. Delivery failures are logged, never propagated: a lost push
// must not fail the sync that produced it.
func (s *Service) SendSyncComplete(ctx context.Context, userID int64, newTransactions int) error {
	tokens, err := s.repo.GetActiveTokensByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if len(tokens) == 0 {
		log.Printf("No active device tokens for user %d", userID)
		return nil
	}

	if s.messenger == nil {
		return nil
	}

	title := s.msgs.SyncComplete.Title
	body := fmt.Sprintf(s.msgs.SyncComplete.Body, newTransactions)

	tokenStrings := make([]string, len(tokens))
	for i, t := range tokens {
		tokenStrings[i] = t.Token
	}

	data := map[string]string{"route": "transactions"}
	if err := s.messenger.SendMulticast(ctx, tokenStrings, title, body, data); err != nil {
		log.Printf("Error sending sync notification to user %d: %v", userID, err)
	}

	return nil
}
