package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	appLogger "github.com/Grimm02938/COCMarket/internal/infra/logger"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

const checkoutCurrency = "eur"

var (
	// ErrProductUnavailable indicates the listing is no longer on the market.
	ErrProductUnavailable = errors.New("product no longer available")
	// ErrOwnListingPurchase indicates a seller buying their own listing.
	ErrOwnListingPurchase = errors.New("cannot buy your own listing")
)

// CheckoutService drives the payment flow against the external gateway.
type CheckoutService struct {
	products port.ProductRepository
	users    port.UserRepository
	gateway  port.PaymentGateway
	events   port.EventPublisher
	logger   *zap.Logger
	now      NowFunc
}

// NewCheckoutService constructs the checkout service.
func NewCheckoutService(products port.ProductRepository, users port.UserRepository, gateway port.PaymentGateway, events port.EventPublisher, logger *zap.Logger, opts ...CheckoutOption) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &CheckoutService{
		products: products,
		users:    users,
		gateway:  gateway,
		events:   events,
		logger:   logger,
		now:      defaultNow,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CheckoutOption customizes the checkout service.
type CheckoutOption func(*CheckoutService)

// WithCheckoutClock injects a custom clock (primarily for testing).
func WithCheckoutClock(now NowFunc) CheckoutOption {
	return func(s *CheckoutService) {
		if now != nil {
			s.now = now
		}
	}
}

// CreateCheckout opens a gateway-hosted payment page for the listing. The
// origin URL anchors the success and cancel redirects back to the storefront.
func (s *CheckoutService) CreateCheckout(ctx context.Context, buyerID, productID, originURL string) (port.CheckoutSession, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return port.CheckoutSession{}, ErrProductNotFound
		}
		return port.CheckoutSession{}, fmt.Errorf("get product: %w", err)
	}

	if !product.IsAvailable {
		return port.CheckoutSession{}, ErrProductUnavailable
	}
	if product.SellerID == buyerID {
		return port.CheckoutSession{}, ErrOwnListingPurchase
	}

	origin := strings.TrimRight(strings.TrimSpace(originURL), "/")
	if origin == "" {
		return port.CheckoutSession{}, fmt.Errorf("origin url is required")
	}

	input := port.CheckoutInput{
		Title:       product.Title,
		Description: product.Description,
		Currency:    checkoutCurrency,
		UnitAmount:  int64(math.Round(product.Price * 100)),
		Quantity:    1,
		SuccessURL:  origin + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + "/payment-cancelled",
		Metadata: map[string]string{
			"product_id": product.ID,
			"buyer_id":   buyerID,
			"seller_id":  product.SellerID,
		},
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, input)
	if err != nil {
		return port.CheckoutSession{}, fmt.Errorf("create checkout: %w", err)
	}

	s.logger.Info("checkout session opened",
		zap.String("product_id", product.ID),
		zap.String("session_id", appLogger.MaskString(session.ID)),
	)

	return session, nil
}

// HandleWebhook processes a verified gateway callback. A completed checkout
// takes the listing off the market and updates both parties' counters.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	if event.Type != "checkout.session.completed" {
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	productID := event.Metadata["product_id"]
	buyerID := event.Metadata["buyer_id"]
	sellerID := event.Metadata["seller_id"]
	if productID == "" || buyerID == "" || sellerID == "" {
		return fmt.Errorf("%w: checkout metadata incomplete", port.ErrWebhookPayloadInvalid)
	}

	if err := s.products.MarkUnavailable(ctx, productID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("mark product sold: %w", err)
		}
		s.logger.Warn("sold product missing", zap.String("product_id", productID))
	}

	if err := s.users.IncrementSales(ctx, sellerID); err != nil {
		s.logger.Warn("increment sales failed", zap.String("user_id", sellerID), zap.Error(err))
	}
	if err := s.users.IncrementPurchases(ctx, buyerID); err != nil {
		s.logger.Warn("increment purchases failed", zap.String("user_id", buyerID), zap.Error(err))
	}

	if s.events != nil {
		completed := domain.OrderCompletedEvent{
			ProductID:   productID,
			BuyerID:     buyerID,
			SellerID:    sellerID,
			CompletedAt: s.now().UTC(),
		}
		if err := s.events.PublishOrderCompleted(ctx, completed); err != nil {
			s.logger.Warn("publish order completed failed", zap.Error(err))
		}
	}

	return nil
}
