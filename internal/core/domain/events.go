package domain

import "time"

// UserRegisteredEvent represents the payload for market.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	AuthProvider string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// SessionRevokedEvent represents the payload for market.session.revoked messages.
type SessionRevokedEvent struct {
	EventID         string
	UserID          string
	SessionsRevoked int
	Reason          string
	RevokedAt       time.Time
	Metadata        map[string]any
}

// ProductListedEvent represents the payload for market.product.listed messages.
type ProductListedEvent struct {
	EventID   string
	ProductID string
	SellerID  string
	GameName  string
	Category  string
	Price     float64
	ListedAt  time.Time
	Metadata  map[string]any
}

// OrderCompletedEvent represents the payload for market.order.completed messages.
type OrderCompletedEvent struct {
	EventID     string
	ProductID   string
	BuyerID     string
	SellerID    string
	CompletedAt time.Time
	Metadata    map[string]any
}
