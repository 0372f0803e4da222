package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM rejects multicasts above 500 tokens.
const multicastLimit = 500

// TokenDeactivator marks a device token as inactive after FCM reports it
// unregistered. Injected by the caller so this package stays off the
// repository layer.
type TokenDeactivator func(ctx context.Context, token string) error

// Client delivers push notifications through Firebase Cloud Messaging and
// implements notification.Messenger.
type Client struct {
	fcm        *messaging.Client
	deactivate TokenDeactivator
}

func NewClient(ctx context.Context, credentialsFile string, deactivate TokenDeactivator) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	fcm, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{fcm: fcm, deactivate: deactivate}, nil
}

// SendMulticast pushes one notification to every token, batching to stay
// under the FCM multicast limit. Tokens FCM reports as dead are deactivated.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	sent, failed := 0, 0
	for start := 0; start < len(tokens); start += multicastLimit {
		end := min(start+multicastLimit, len(tokens))
		batch := tokens[start:end]

		resp, err := c.fcm.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		})
		if err != nil {
			return fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		sent += resp.SuccessCount
		failed += resp.FailureCount
		if resp.FailureCount > 0 {
			c.retireDeadTokens(ctx, batch, resp)
		}
	}

	log.Printf("FCM multicast: %d delivered, %d failed", sent, failed)
	return nil
}

// retireDeadTokens deactivates every token in the batch whose send failed
// with an unregistered or invalid-argument error. Transient errors are only
// logged; the token stays active for the next push.
func (c *Client) retireDeadTokens(ctx context.Context, batch []string, resp *messaging.BatchResponse) {
	for i, r := range resp.Responses {
		if r.Error == nil {
			continue
		}
		if !messaging.IsUnregistered(r.Error) && !messaging.IsInvalidArgument(r.Error) {
			log.Printf("FCM send error for token %s: %v", batch[i], r.Error)
			continue
		}

		log.Printf("Retiring dead FCM token %s: %v", batch[i], r.Error)
		if c.deactivate == nil {
			continue
		}
		if err := c.deactivate(ctx, batch[i]); err != nil {
			log.Printf("Failed to deactivate FCM token %s: %v", batch[i], err)
		}
	}
}
