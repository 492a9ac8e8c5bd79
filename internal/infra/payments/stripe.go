package payments

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/infra/config"
)

// StripeGateway implements port.PaymentGateway against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeGateway constructs a gateway with its own API client so no global
// key needs to be set.
func NewStripeGateway(cfg config.StripeSettings, logger *zap.Logger) *StripeGateway {
	api := client.New(cfg.SecretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

// CreateCheckoutSession opens a hosted Stripe Checkout page for a single
// listing.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input port.CheckoutInput) (port.CheckoutSession, error) {
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(input.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(input.Title),
						Description: stripe.String(input.Description),
					},
					UnitAmount: stripe.Int64(input.UnitAmount),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
	}
	params.Context = ctx

	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return port.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}

	return port.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyWebhook authenticates a webhook delivery against the endpoint secret
// and extracts the event type plus the checkout metadata.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (port.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		g.logger.Warn("webhook signature rejected", zap.Error(err))
		return port.WebhookEvent{}, fmt.Errorf("%w: %w", port.ErrWebhookSignatureInvalid, err)
	}

	result := port.WebhookEvent{Type: string(event.Type)}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return result, nil
	}

	var object struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		return port.WebhookEvent{}, fmt.Errorf("%w: %w", port.ErrWebhookPayloadInvalid, err)
	}
	result.Metadata = object.Metadata

	return result, nil
}

var _ port.PaymentGateway = (*StripeGateway)(nil)
