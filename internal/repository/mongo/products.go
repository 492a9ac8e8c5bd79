package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

// ProductRepository persists listings in the products collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository constructs a ProductRepository over the provided database.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productsCollection)}
}

// Create inserts a new listing.
func (r *ProductRepository) Create(ctx context.Context, product domain.GameProduct) error {
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// CreateMany bulk-inserts listings, used by sample-data seeding.
func (r *ProductRepository) CreateMany(ctx context.Context, products []domain.GameProduct) error {
	if len(products) == 0 {
		return nil
	}
	docs := make([]any, len(products))
	for i, p := range products {
		docs[i] = p
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// GetByID fetches a listing by identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.GameProduct, error) {
	var product domain.GameProduct
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

// Update applies the non-nil patch fields, bumps updated_at, and returns the
// updated document.
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.GameProduct, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Condition != nil {
		set["condition"] = *patch.Condition
	}
	if patch.IsAvailable != nil {
		set["is_available"] = *patch.IsAvailable
	}
	if patch.Stats != nil {
		set["stats"] = patch.Stats
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.GameProduct
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return &updated, nil
}

// Delete removes a listing permanently.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns a page of listings matching the filter plus the total count
// across all pages.
func (r *ProductRepository) List(ctx context.Context, filter port.ProductFilter) ([]domain.GameProduct, int64, error) {
	query := buildProductQuery(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	skip := int64(page-1) * int64(limit)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]domain.GameProduct, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	return products, total, nil
}

// Count returns the total number of listings, available or not.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// IncrementViews bumps the listing's view counter.
func (r *ProductRepository) IncrementViews(ctx context.Context, id string) error {
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}}); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// MarkUnavailable flips the listing off the market after a completed sale.
func (r *ProductRepository) MarkUnavailable(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_available": false}})
	if err != nil {
		return fmt.Errorf("mark product unavailable: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// PopularGames groups listings by game name, most-listed first.
func (r *ProductRepository) PopularGames(ctx context.Context, limit int) ([]domain.GameCount, error) {
	if limit <= 0 {
		limit = 20
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$game_name"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate popular games: %w", err)
	}
	defer cursor.Close(ctx)

	games := make([]domain.GameCount, 0, limit)
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode popular games: %w", err)
	}

	return games, nil
}

func buildProductQuery(filter port.ProductFilter) bson.M {
	query := bson.M{}
	if !filter.IncludeHidden {
		query["is_available"] = true
	}

	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}

	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"game_name": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return query
}
