package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

var (
	// ErrInvalidRating indicates a rating outside the 1 to 5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrAlreadyReviewed indicates the author already reviewed this listing.
	ErrAlreadyReviewed = errors.New("listing already reviewed by this user")
	// ErrOwnListingReview indicates a seller reviewing their own listing.
	ErrOwnListingReview = errors.New("cannot review your own listing")
)

// ReviewService implements buyer reviews on listings.
type ReviewService struct {
	reviews  port.ReviewRepository
	products port.ProductRepository
	logger   *zap.Logger
	now      NowFunc
}

// NewReviewService constructs the review service.
func NewReviewService(reviews port.ReviewRepository, products port.ProductRepository, logger *zap.Logger, opts ...ReviewOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ReviewService{
		reviews:  reviews,
		products: products,
		logger:   logger,
		now:      defaultNow,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ReviewOption customizes the review service.
type ReviewOption func(*ReviewService)

// WithReviewClock injects a custom clock (primarily for testing).
func WithReviewClock(now NowFunc) ReviewOption {
	return func(s *ReviewService) {
		if now != nil {
			s.now = now
		}
	}
}

// CreateReview records a buyer's review of a listing. One review per author
// per listing.
func (s *ReviewService) CreateReview(ctx context.Context, authorID, productID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if product.SellerID == authorID {
		return nil, ErrOwnListingReview
	}

	if _, err := s.reviews.GetByProductAndAuthor(ctx, productID, authorID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup review: %w", err)
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		SellerID:  product.SellerID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	return &review, nil
}

// ListProductReviews returns the reviews on a listing, newest first.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ListSellerReviews returns every review across a seller's listings.
func (s *ReviewService) ListSellerReviews(ctx context.Context, sellerID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller reviews: %w", err)
	}
	return reviews, nil
}

// SellerRating computes the seller's mean rating and review count.
func (s *ReviewService) SellerRating(ctx context.Context, sellerID string) (float64, int64, error) {
	average, count, err := s.reviews.AverageRating(ctx, sellerID)
	if err != nil {
		return 0, 0, fmt.Errorf("seller rating: %w", err)
	}
	return average, count, nil
}
