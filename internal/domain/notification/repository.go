package notification

import "context"

// Repository persists device tokens. A token is unique per user and
// upserting an existing one reactivates it.
type Repository interface {
	UpsertDeviceToken(ctx context.Context, params CreateDeviceTokenParams) (*DeviceToken, error)
	GetActiveTokensByUserID(ctx context.Context, userID int64) ([]*DeviceToken, error)
	DeactivateToken(ctx context.Context, token string) error
}

// Messenger delivers a push notification to a set of device tokens.
// The FCM client in the infrastructure layer is the production implementation.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
