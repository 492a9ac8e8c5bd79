package handlers

import (
	"time"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Detail  string `json:"detail"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, detail string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Detail:  detail,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=5"`
	Location string `json:"location,omitempty"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SocialLoginRequest carries the provider-issued identity token.
type SocialLoginRequest struct {
	IDToken string `json:"token" binding:"required"`
}

// AuthResponse is returned by register, login and social-login.
type AuthResponse struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// CreateProductRequest defines the listing creation payload.
type CreateProductRequest struct {
	Title         string                      `json:"title" binding:"required"`
	Description   string                      `json:"description" binding:"required"`
	Category      string                      `json:"category" binding:"required"`
	GameName      string                      `json:"game_name" binding:"required"`
	Price         float64                     `json:"price" binding:"required"`
	OriginalPrice *float64                    `json:"original_price,omitempty"`
	Condition     string                      `json:"condition" binding:"required"`
	Location      string                      `json:"location,omitempty"`
	Images        []string                    `json:"images,omitempty"`
	IsFeatured    bool                        `json:"is_featured,omitempty"`
	Level         *int                        `json:"level,omitempty"`
	Rank          string                      `json:"rank,omitempty"`
	Stats         map[string]domain.StatValue `json:"stats,omitempty"`
}

// ProductListResponse wraps a paginated listing query result.
type ProductListResponse struct {
	Products []domain.GameProduct `json:"products"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	Limit    int                  `json:"limit"`
	HasMore  bool                 `json:"has_more"`
}

// CreateReviewRequest defines the review creation payload.
type CreateReviewRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment,omitempty"`
}

// ProductReviewsResponse bundles a listing's reviews with the seller average.
type ProductReviewsResponse struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	Total         int             `json:"total"`
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	User          domain.User `json:"user"`
	AverageRating float64     `json:"average_rating"`
	ReviewsCount  int64       `json:"reviews_count"`
}

// CreateCheckoutRequest starts a payment for a listing.
type CreateCheckoutRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	OriginURL string `json:"origin_url" binding:"required,url"`
}

// CheckoutResponse carries the gateway-hosted payment page handle.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// WebhookResponse acknowledges a processed gateway callback.
type WebhookResponse struct {
	Status string `json:"status"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse reports per-dependency readiness.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
