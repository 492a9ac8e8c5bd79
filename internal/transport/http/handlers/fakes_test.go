package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return repository.ErrConflict
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if patch.DisplayName != nil {
		user.DisplayName = *patch.DisplayName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.LocationDisplay != nil {
		user.LocationDisplay = *patch.LocationDisplay
	}
	if patch.ContactInfo != nil {
		user.ContactInfo = patch.ContactInfo
	}

	r.users[id] = user
	return &user, nil
}

func (r *memUserRepo) IncrementSales(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.TotalSales++
	r.users[id] = user
	return nil
}

func (r *memUserRepo) IncrementPurchases(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.TotalPurchases++
	r.users[id] = user
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memSessionRepo) GetActiveByToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.Token == token && session.IsActive {
			s := session
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) Deactivate(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	session.IsActive = false
	r.sessions[sessionID] = session
	return nil
}

func (r *memSessionRepo) DeactivateByToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if session.Token == token && session.IsActive {
			session.IsActive = false
			r.sessions[id] = session
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) DeactivateAllForUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			r.sessions[id] = session
			count++
		}
	}
	return count, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.GameProduct
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]domain.GameProduct)}
}

func (r *memProductRepo) Create(_ context.Context, product domain.GameProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) CreateMany(ctx context.Context, products []domain.GameProduct) error {
	for _, product := range products {
		if err := r.Create(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*domain.GameProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (r *memProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.GameProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if patch.Title != nil {
		product.Title = *patch.Title
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Condition != nil {
		product.Condition = *patch.Condition
	}
	if patch.IsAvailable != nil {
		product.IsAvailable = *patch.IsAvailable
	}
	if patch.Stats != nil {
		product.Stats = patch.Stats
	}
	product.UpdatedAt = time.Now().UTC()

	r.products[id] = product
	return &product, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) List(_ context.Context, filter port.ProductFilter) ([]domain.GameProduct, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.GameProduct, 0, len(r.products))
	for _, product := range r.products {
		if !filter.IncludeHidden && !product.IsAvailable {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Location != "" && product.Location != filter.Location {
			continue
		}
		if filter.MinPrice != nil && product.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			haystack := strings.ToLower(product.Title + " " + product.Description + " " + product.GameName)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, product)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memProductRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *memProductRepo) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	product.ViewCount++
	r.products[id] = product
	return nil
}

func (r *memProductRepo) MarkUnavailable(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	product.IsAvailable = false
	r.products[id] = product
	return nil
}

func (r *memProductRepo) PopularGames(_ context.Context, limit int) ([]domain.GameCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	for _, product := range r.products {
		counts[product.GameName]++
	}

	games := make([]domain.GameCount, 0, len(counts))
	for name, count := range counts {
		games = append(games, domain.GameCount{Name: name, ListingsCount: count})
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].ListingsCount > games[j].ListingsCount
	})

	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]domain.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[string]domain.Review)}
}

func (r *memReviewRepo) Create(_ context.Context, review domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.AuthorID == review.AuthorID {
			return repository.ErrConflict
		}
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *memReviewRepo) GetByProductAndAuthor(_ context.Context, productID, authorID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, review := range r.reviews {
		if review.ProductID == productID && review.AuthorID == authorID {
			rv := review
			return &rv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memReviewRepo) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Review
	for _, review := range r.reviews {
		if review.ProductID == productID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *memReviewRepo) ListBySeller(_ context.Context, sellerID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Review
	for _, review := range r.reviews {
		if review.SellerID == sellerID {
			out = append(out, review)
		}
	}
	return out, nil
}

func (r *memReviewRepo) AverageRating(_ context.Context, sellerID string) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum, count := 0, int64(0)
	for _, review := range r.reviews {
		if review.SellerID == sellerID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishUserRegistered(context.Context, domain.UserRegisteredEvent) error { return nil }
func (nopPublisher) PublishSessionRevoked(context.Context, domain.SessionRevokedEvent) error {
	return nil
}
func (nopPublisher) PublishProductListed(context.Context, domain.ProductListedEvent) error { return nil }
func (nopPublisher) PublishOrderCompleted(context.Context, domain.OrderCompletedEvent) error {
	return nil
}

type stubVerifier struct {
	identity port.ProviderIdentity
	err      error
}

func (s *stubVerifier) Verify(context.Context, string) (port.ProviderIdentity, error) {
	if s.err != nil {
		return port.ProviderIdentity{}, s.err
	}
	return s.identity, nil
}

type stubGateway struct {
	session   port.CheckoutSession
	createErr error

	verifyEvent port.WebhookEvent
	verifyErr   error
}

func (s *stubGateway) CreateCheckoutSession(_ context.Context, _ port.CheckoutInput) (port.CheckoutSession, error) {
	if s.createErr != nil {
		return port.CheckoutSession{}, s.createErr
	}
	return s.session, nil
}

func (s *stubGateway) VerifyWebhook(_ []byte, _ string) (port.WebhookEvent, error) {
	if s.verifyErr != nil {
		return port.WebhookEvent{}, s.verifyErr
	}
	return s.verifyEvent, nil
}
