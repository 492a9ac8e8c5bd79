package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newReviewFixture(t *testing.T) (*ReviewService, *ProductService) {
	t.Helper()

	products := newMemoryProductRepo()
	reviews := newMemoryReviewRepo()

	productService := NewProductService(products, nil, zap.NewNop())
	reviewService := NewReviewService(reviews, products, zap.NewNop())
	return reviewService, productService
}

func TestCreateReview(t *testing.T) {
	reviews, products := newReviewFixture(t)
	ctx := context.Background()

	product, err := products.CreateProduct(ctx, "seller-1", validProductInput())
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	review, err := reviews.CreateReview(ctx, "buyer-1", product.ID, 5, "Transaction parfaite")
	if err != nil {
		t.Fatalf("CreateReview returned error: %v", err)
	}

	if review.SellerID != "seller-1" {
		t.Fatalf("review must carry the listing's seller, got %s", review.SellerID)
	}
	if review.Rating != 5 {
		t.Fatalf("unexpected rating: %d", review.Rating)
	}
}

func TestCreateReviewRejectsDuplicates(t *testing.T) {
	reviews, products := newReviewFixture(t)
	ctx := context.Background()

	product, err := products.CreateProduct(ctx, "seller-1", validProductInput())
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	if _, err := reviews.CreateReview(ctx, "buyer-1", product.ID, 4, "bien"); err != nil {
		t.Fatalf("first CreateReview returned error: %v", err)
	}

	if _, err := reviews.CreateReview(ctx, "buyer-1", product.ID, 1, "changé d'avis"); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	reviews, products := newReviewFixture(t)
	ctx := context.Background()

	product, err := products.CreateProduct(ctx, "seller-1", validProductInput())
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	if _, err := reviews.CreateReview(ctx, "buyer-1", product.ID, 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating for 0, got %v", err)
	}
	if _, err := reviews.CreateReview(ctx, "buyer-1", product.ID, 6, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating for 6, got %v", err)
	}
	if _, err := reviews.CreateReview(ctx, "seller-1", product.ID, 5, ""); !errors.Is(err, ErrOwnListingReview) {
		t.Fatalf("expected ErrOwnListingReview, got %v", err)
	}
	if _, err := reviews.CreateReview(ctx, "buyer-1", "missing", 5, ""); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestSellerRating(t *testing.T) {
	reviews, products := newReviewFixture(t)
	ctx := context.Background()

	first, err := products.CreateProduct(ctx, "seller-1", validProductInput())
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	second, err := products.CreateProduct(ctx, "seller-1", validProductInput())
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	if _, err := reviews.CreateReview(ctx, "buyer-1", first.ID, 5, ""); err != nil {
		t.Fatalf("CreateReview returned error: %v", err)
	}
	if _, err := reviews.CreateReview(ctx, "buyer-2", second.ID, 2, ""); err != nil {
		t.Fatalf("CreateReview returned error: %v", err)
	}

	average, count, err := reviews.SellerRating(ctx, "seller-1")
	if err != nil {
		t.Fatalf("SellerRating returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 reviews, got %d", count)
	}
	if average != 3.5 {
		t.Fatalf("expected average 3.5, got %f", average)
	}

	average, count, err = reviews.SellerRating(ctx, "nobody")
	if err != nil {
		t.Fatalf("SellerRating returned error: %v", err)
	}
	if average != 0 || count != 0 {
		t.Fatalf("expected zero rating for unreviewed seller, got %f/%d", average, count)
	}
}
