package item

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Item represents one linked connection to a financial institution via the
// aggregation provider. One Item can have multiple Accounts (e.g. checking +
// credit card from the same bank).
//
// Cursor and LastFetchedAt are the sync checkpoint: Cursor is nil exactly when
// no page has ever completed for this item, or when the provider has reset the
// stream. They are always persisted together.
type Item struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	ProviderItemID  string     `json:"providerItemId"`
	AccessToken     string     `json:"-"` // opaque provider credential, encrypted at rest
	InstitutionID   string     `json:"institutionId"`
	InstitutionName string     `json:"institutionName"`
	Cursor          *string    `json:"-"`
	LastFetchedAt   *time.Time `json:"lastFetchedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CreateParams contains parameters for linking a new item.
type CreateParams struct {
	UserID          int64
	ProviderItemID  string
	AccessToken     string
	InstitutionID   string
	InstitutionName string
}

// Checkpoint is the durable pagination state written after every synced page.
// LastFetchedAt is non-nil iff Cursor is non-nil.
type Checkpoint struct {
	Cursor        *string
	LastFetchedAt *time.Time
}

// NewCheckpoint normalizes a provider next-cursor into a Checkpoint as of now.
// A blank cursor means the stream has reset: both fields become nil so the
// next sync restarts from scratch.
func NewCheckpoint(nextCursor string, now time.Time) Checkpoint {
	if nextCursor == "" {
		return Checkpoint{}
	}
	return Checkpoint{Cursor: &nextCursor, LastFetchedAt: &now}
}
