package port

import (
	"context"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error
	PublishProductListed(ctx context.Context, event domain.ProductListedEvent) error
	PublishOrderCompleted(ctx context.Context, event domain.OrderCompletedEvent) error
}
