package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

// UserService implements public profiles and owner profile updates.
type UserService struct {
	users   port.UserRepository
	reviews port.ReviewRepository
	logger  *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(users port.UserRepository, reviews port.ReviewRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, reviews: reviews, logger: logger}
}

// UserProfile is the public view of an account plus its seller reputation.
type UserProfile struct {
	User          domain.User `json:"user"`
	AverageRating float64     `json:"average_rating"`
	ReviewsCount  int64       `json:"reviews_count"`
}

// GetProfile returns the public profile for a user.
func (s *UserService) GetProfile(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	profile := &UserProfile{User: user.Redacted()}

	if s.reviews != nil {
		average, count, err := s.reviews.AverageRating(ctx, id)
		if err != nil {
			// Reputation is a decoration on the profile; serve it without.
			s.logger.Warn("seller rating lookup failed", zap.String("user_id", id), zap.Error(err))
		} else {
			profile.AverageRating = average
			profile.ReviewsCount = count
		}
	}

	return profile, nil
}

// UpdateProfile applies the owner's patch to their own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, patch domain.ProfilePatch) (*domain.User, error) {
	if patch.IsZero() {
		return nil, ErrEmptyPatch
	}

	updated, err := s.users.UpdateProfile(ctx, actorID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	redacted := updated.Redacted()
	return &redacted, nil
}
