package port

import (
	"context"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
)

// ReviewRepository exposes persistence behavior for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	GetByProductAndAuthor(ctx context.Context, productID, authorID string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Review, error)
	// AverageRating returns the mean rating across a seller's reviews and the
	// review count; a seller with no reviews yields (0, 0).
	AverageRating(ctx context.Context, sellerID string) (float64, int64, error)
}
