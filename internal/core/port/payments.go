package port

import (
	"context"
	"errors"
)

var (
	// ErrWebhookPayloadInvalid indicates the webhook body could not be parsed.
	ErrWebhookPayloadInvalid = errors.New("webhook payload invalid")
	// ErrWebhookSignatureInvalid indicates the webhook signature check failed.
	ErrWebhookSignatureInvalid = errors.New("webhook signature invalid")
)

// CheckoutInput describes a single-product checkout to hand to the gateway.
type CheckoutInput struct {
	Title       string
	Description string
	Currency    string
	// UnitAmount is the price in the currency's minor unit (cents).
	UnitAmount int64
	Quantity   int64
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the gateway-hosted payment page handle.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified gateway callback.
type WebhookEvent struct {
	Type     string
	Metadata map[string]string
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (CheckoutSession, error)
	// VerifyWebhook authenticates a raw webhook delivery and returns the
	// decoded event.
	VerifyWebhook(payload []byte, signature string) (WebhookEvent, error)
}
