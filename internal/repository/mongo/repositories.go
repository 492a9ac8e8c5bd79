package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Grimm02938/COCMarket/internal/core/port"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
	productsCollection = "products"
	reviewsCollection  = "reviews"
)

// Repositories bundles every document-store repository over one database handle.
type Repositories struct {
	Users    port.UserRepository
	Sessions port.SessionRepository
	Products port.ProductRepository
	Reviews  port.ReviewRepository

	db *mongo.Database
}

// NewRepositories constructs the repository bundle.
func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Sessions: NewSessionRepository(db),
		Products: NewProductRepository(db),
		Reviews:  NewReviewRepository(db),
		db:       db,
	}
}

// EnsureIndexes creates the indexes the queries rely on. Unique indexes on
// email and username back the read-then-write duplicate checks: a lost race
// between check and insert still surfaces as a conflict instead of a
// duplicate account.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	users := r.db.Collection(usersCollection)
	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	sessions := r.db.Collection(sessionsCollection)
	if _, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}

	products := r.db.Collection(productsCollection)
	if _, err := products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "game_name", Value: 1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}

	reviews := r.db.Collection(reviewsCollection)
	if _, err := reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create review indexes: %w", err)
	}

	return nil
}
