package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes market.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		AuthProvider string         `json:"auth_provider"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		AuthProvider: event.AuthProvider,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "market.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishSessionRevoked publishes market.session.revoked events.
func (p *EventPublisher) PublishSessionRevoked(ctx context.Context, event domain.SessionRevokedEvent) error {
	payload := struct {
		UserID          string         `json:"user_id"`
		SessionsRevoked int            `json:"sessions_revoked"`
		Reason          string         `json:"reason"`
		RevokedAt       time.Time      `json:"revoked_at"`
		Metadata        map[string]any `json:"metadata,omitempty"`
	}{
		UserID:          event.UserID,
		SessionsRevoked: event.SessionsRevoked,
		Reason:          event.Reason,
		RevokedAt:       event.RevokedAt.UTC(),
		Metadata:        event.Metadata,
	}

	return p.publish(ctx, event.EventID, "market.session.revoked", event.UserID, event.RevokedAt, payload)
}

// PublishProductListed publishes market.product.listed events.
func (p *EventPublisher) PublishProductListed(ctx context.Context, event domain.ProductListedEvent) error {
	payload := struct {
		ProductID string         `json:"product_id"`
		SellerID  string         `json:"seller_id"`
		GameName  string         `json:"game_name"`
		Category  string         `json:"category"`
		Price     float64        `json:"price"`
		ListedAt  time.Time      `json:"listed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		ProductID: event.ProductID,
		SellerID:  event.SellerID,
		GameName:  event.GameName,
		Category:  event.Category,
		Price:     event.Price,
		ListedAt:  event.ListedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "market.product.listed", event.SellerID, event.ListedAt, payload)
}

// PublishOrderCompleted publishes market.order.completed events.
func (p *EventPublisher) PublishOrderCompleted(ctx context.Context, event domain.OrderCompletedEvent) error {
	payload := struct {
		ProductID   string         `json:"product_id"`
		BuyerID     string         `json:"buyer_id"`
		SellerID    string         `json:"seller_id"`
		CompletedAt time.Time      `json:"completed_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		ProductID:   event.ProductID,
		BuyerID:     event.BuyerID,
		SellerID:    event.SellerID,
		CompletedAt: event.CompletedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "market.order.completed", event.BuyerID, event.CompletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
