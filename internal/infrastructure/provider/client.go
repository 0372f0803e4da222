package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL   = "https://production.plaid.com"
	defaultTimeout   = 60 * time.Second
	defaultPageCount = 500

	transactionsSyncPath = "/transactions/sync"
	itemRemovePath       = "/item/remove"
)

// Client handles communication with the aggregation provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new provider API client.
func NewClient(baseURL, clientID, secret string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
	}
}

// syncRequest is the request body for the transactions sync endpoint.
type syncRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	Cursor      string `json:"cursor,omitempty"`
	Count       int    `json:"count"`
}

// SyncResponse is one page of changes from the provider's sync endpoint.
type SyncResponse struct {
	Accounts   []Account            `json:"accounts"`
	Added      []Transaction        `json:"added"`
	Modified   []Transaction        `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	NextCursor string               `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
	RequestID  string               `json:"request_id"`
}

// Account represents an account as reported by the provider.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances holds the balance snapshot for an account. The provider omits
// fields it cannot determine (e.g. available balance on credit accounts).
type Balances struct {
	Current         *decimal.Decimal `json:"current"`
	Available       *decimal.Decimal `json:"available"`
	ISOCurrencyCode string           `json:"iso_currency_code"`
}

// CurrentOrZero returns the current balance, or zero when the provider omitted it.
func (b Balances) CurrentOrZero() decimal.Decimal {
	if b.Current == nil {
		return decimal.Zero
	}
	return *b.Current
}

// AvailableOrZero returns the available balance, or zero when the provider omitted it.
func (b Balances) AvailableOrZero() decimal.Decimal {
	if b.Available == nil {
		return decimal.Zero
	}
	return *b.Available
}

// Transaction represents a transaction change as reported by the provider.
// Amounts are signed with the provider's convention: positive is an outflow
// (expense), negative is an inflow.
type Transaction struct {
	TransactionID   string          `json:"transaction_id"`
	AccountID       string          `json:"account_id"`
	Name            string          `json:"name"`
	MerchantName    string          `json:"merchant_name"`
	Amount          decimal.Decimal `json:"amount"`
	ISOCurrencyCode string          `json:"iso_currency_code"`
	DateString      string          `json:"date"`     // "2006-01-02"
	DatetimeString  string          `json:"datetime"` // RFC3339, often empty
	Category        Category        `json:"personal_finance_category"`
	PaymentChannel  string          `json:"payment_channel"`
	LogoURL         string          `json:"logo_url"`
	Pending         bool            `json:"pending"`
}

// Category is the provider's category taxonomy for a transaction.
type Category struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// GetDate parses and returns the transaction date.
func (t *Transaction) GetDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// GetDatetime parses and returns the precise timestamp if the provider sent one.
func (t *Transaction) GetDatetime() (*time.Time, error) {
	if t.DatetimeString == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, t.DatetimeString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse datetime '%s': %w", t.DatetimeString, err)
	}
	return &parsed, nil
}

// RemovedTransaction identifies a transaction the provider has deleted.
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
}

// ErrorResponse represents an error response from the provider API.
type ErrorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

// TransactionsSync fetches one page of account and transaction changes.
// An empty cursor requests the start of the stream; the returned NextCursor
// is passed back on the next call to resume where this page left off.
func (c *Client) TransactionsSync(ctx context.Context, accessToken, cursor string) (*SyncResponse, error) {
	reqBody := syncRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		Cursor:      cursor,
		Count:       defaultPageCount,
	}

	body, err := c.post(ctx, transactionsSyncPath, reqBody)
	if err != nil {
		return nil, err
	}

	var syncResp SyncResponse
	if err := json.Unmarshal(body, &syncResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sync response: %w", err)
	}

	return &syncResp, nil
}

// itemRemoveRequest is the request body for the item remove endpoint.
type itemRemoveRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

// RemoveItem revokes the access token for a linked item at the provider.
func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	reqBody := itemRemoveRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}

	_, err := c.post(ctx, itemRemovePath, reqBody)
	return err
}

// post sends a JSON POST request and returns the response body, translating
// non-200 responses into errors.
func (c *Client) post(ctx context.Context, path string, reqBody any) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("provider request failed with status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("provider error (status %d): %s/%s - %s",
			resp.StatusCode, errResp.ErrorType, errResp.ErrorCode, errResp.ErrorMessage)
	}

	return body, nil
}
