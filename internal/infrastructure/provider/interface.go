package provider

import (
	"context"
)

// ClientInterface defines the methods required from the provider API client
type ClientInterface interface {
	TransactionsSync(ctx context.Context, accessToken, cursor string) (*SyncResponse, error)
	RemoveItem(ctx context.Context, accessToken string) error
}
