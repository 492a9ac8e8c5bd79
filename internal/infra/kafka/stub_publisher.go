package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs market.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"auth_provider": event.AuthProvider,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("market.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishSessionRevoked logs market.session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	payload := map[string]any{
		"user_id":          event.UserID,
		"sessions_revoked": event.SessionsRevoked,
		"reason":           event.Reason,
		"revoked_at":       event.RevokedAt,
		"metadata":         event.Metadata,
	}
	p.logEvent("market.session.revoked", event.UserID, event.RevokedAt, payload)
	return nil
}

// PublishProductListed logs market.product.listed events.
func (p *StubPublisher) PublishProductListed(_ context.Context, event domain.ProductListedEvent) error {
	payload := map[string]any{
		"product_id": event.ProductID,
		"seller_id":  event.SellerID,
		"game_name":  event.GameName,
		"category":   event.Category,
		"price":      event.Price,
		"listed_at":  event.ListedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("market.product.listed", event.SellerID, event.ListedAt, payload)
	return nil
}

// PublishOrderCompleted logs market.order.completed events.
func (p *StubPublisher) PublishOrderCompleted(_ context.Context, event domain.OrderCompletedEvent) error {
	payload := map[string]any{
		"product_id":   event.ProductID,
		"buyer_id":     event.BuyerID,
		"seller_id":    event.SellerID,
		"completed_at": event.CompletedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("market.order.completed", event.BuyerID, event.CompletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
