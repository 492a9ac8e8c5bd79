package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

// SessionRepository persists sessions in the sessions collection. Sessions
// are only ever flipped inactive, never deleted; the history stays for audit.
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository constructs a SessionRepository over the provided database.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection)}
}

// Create inserts a new session document.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetActiveByToken looks up the session by exact token match with the active
// flag still set. Expiry is the caller's concern.
func (r *SessionRepository) GetActiveByToken(ctx context.Context, token string) (*domain.Session, error) {
	var session domain.Session
	err := r.coll.FindOne(ctx, bson.M{"token": token, "is_active": true}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Deactivate flips a single session to inactive by identifier.
func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": sessionID}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateByToken flips the active session holding the token. Returns false
// when no active session matched (already logged out or never existed).
func (r *SessionRepository) DeactivateByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"token": token, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return false, fmt.Errorf("deactivate session by token: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// DeactivateAllForUser flips every active session the user owns.
func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID string) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate sessions for user: %w", err)
	}
	return int(res.ModifiedCount), nil
}
