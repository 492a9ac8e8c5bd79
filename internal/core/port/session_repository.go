package port

import (
	"context"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
)

// SessionRepository deals with session storage.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	// GetActiveByToken looks up the session whose token matches exactly and
	// whose active flag is still set.
	GetActiveByToken(ctx context.Context, token string) (*domain.Session, error)
	// Deactivate flips a single session to inactive by identifier.
	Deactivate(ctx context.Context, sessionID string) error
	// DeactivateByToken flips the active session holding the token and reports
	// whether anything changed.
	DeactivateByToken(ctx context.Context, token string) (bool, error)
	// DeactivateAllForUser flips every active session owned by the user and
	// returns how many were affected.
	DeactivateAllForUser(ctx context.Context, userID string) (int, error)
}
