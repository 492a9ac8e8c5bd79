package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

// ReviewRepository persists buyer reviews in the reviews collection.
type ReviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository constructs a ReviewRepository over the provided database.
func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(reviewsCollection)}
}

// Create inserts a review. The unique product/author index rejects a second
// review from the same author on the same listing.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) error {
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert review: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByProductAndAuthor fetches the author's review on a specific listing.
func (r *ReviewRepository) GetByProductAndAuthor(ctx context.Context, productID, authorID string) (*domain.Review, error) {
	var review domain.Review
	filter := bson.M{"product_id": productID, "author_id": authorID}
	if err := r.coll.FindOne(ctx, filter).Decode(&review); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}

// ListByProduct returns reviews left on a listing, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return r.list(ctx, bson.M{"product_id": productID})
}

// ListBySeller returns reviews left on any of a seller's listings, newest first.
func (r *ReviewRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Review, error) {
	return r.list(ctx, bson.M{"seller_id": sellerID})
}

func (r *ReviewRepository) list(ctx context.Context, filter bson.M) ([]domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]domain.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	return reviews, nil
}

// AverageRating computes the mean rating and review count across a seller's
// listings. Returns (0, 0, nil) when the seller has no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, sellerID string) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "seller_id", Value: sellerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Average float64 `bson:"average"`
		Count   int64   `bson:"count"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, fmt.Errorf("decode rating aggregate: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings: %w", err)
	}

	return result.Average, result.Count, nil
}
