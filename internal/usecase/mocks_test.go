package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return fmt.Errorf("insert user: %w", repository.ErrConflict)
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
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

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
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

func (r *memoryUserRepo) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
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

func (r *memoryUserRepo) IncrementSales(_ context.Context, id string) error {
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

func (r *memoryUserRepo) IncrementPurchases(_ context.Context, id string) error {
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

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *memorySessionRepo) Create(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *memorySessionRepo) GetActiveByToken(_ context.Context, token string) (*domain.Session, error) {
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

func (r *memorySessionRepo) Deactivate(_ context.Context, sessionID string) error {
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

func (r *memorySessionRepo) DeactivateByToken(_ context.Context, token string) (bool, error) {
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

func (r *memorySessionRepo) DeactivateAllForUser(_ context.Context, userID string) (int, error) {
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

func (r *memorySessionRepo) activeCountForUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			count++
		}
	}
	return count
}

type memoryProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.GameProduct
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[string]domain.GameProduct)}
}

func (r *memoryProductRepo) Create(_ context.Context, product domain.GameProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepo) CreateMany(_ context.Context, products []domain.GameProduct) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range products {
		r.products[product.ID] = product
	}
	return nil
}

func (r *memoryProductRepo) GetByID(_ context.Context, id string) (*domain.GameProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (r *memoryProductRepo) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.GameProduct, error) {
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

	r.products[id] = product
	return &product, nil
}

func (r *memoryProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepo) List(_ context.Context, filter port.ProductFilter) ([]domain.GameProduct, int64, error) {
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
		if filter.MinPrice != nil && product.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.Price > *filter.MaxPrice {
			continue
		}
		if filter.Location != "" && product.Location != filter.Location {
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
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (r *memoryProductRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *memoryProductRepo) IncrementViews(_ context.Context, id string) error {
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

func (r *memoryProductRepo) MarkUnavailable(_ context.Context, id string) error {
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

func (r *memoryProductRepo) PopularGames(_ context.Context, limit int) ([]domain.GameCount, error) {
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

type memoryReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]domain.Review
}

func newMemoryReviewRepo() *memoryReviewRepo {
	return &memoryReviewRepo{reviews: make(map[string]domain.Review)}
}

func (r *memoryReviewRepo) Create(_ context.Context, review domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.ProductID == review.ProductID && existing.AuthorID == review.AuthorID {
			return fmt.Errorf("insert review: %w", repository.ErrConflict)
		}
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *memoryReviewRepo) GetByProductAndAuthor(_ context.Context, productID, authorID string) (*domain.Review, error) {
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

func (r *memoryReviewRepo) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Review, 0)
	for _, review := range r.reviews {
		if review.ProductID == productID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (r *memoryReviewRepo) ListBySeller(_ context.Context, sellerID string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Review, 0)
	for _, review := range r.reviews {
		if review.SellerID == sellerID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (r *memoryReviewRepo) AverageRating(_ context.Context, sellerID string) (float64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sum, count int64
	for _, review := range r.reviews {
		if review.SellerID == sellerID {
			sum += int64(review.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	revoked    []domain.SessionRevokedEvent
	listed     []domain.ProductListedEvent
	completed  []domain.OrderCompletedEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, event)
	return nil
}

func (p *recordingPublisher) PublishProductListed(_ context.Context, event domain.ProductListedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listed = append(p.listed, event)
	return nil
}

func (p *recordingPublisher) PublishOrderCompleted(_ context.Context, event domain.OrderCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, event)
	return nil
}

type stubVerifier struct {
	identity port.ProviderIdentity
	err      error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (port.ProviderIdentity, error) {
	if v.err != nil {
		return port.ProviderIdentity{}, v.err
	}
	return v.identity, nil
}

type stubGateway struct {
	session     port.CheckoutSession
	createErr   error
	verifyEvent port.WebhookEvent
	verifyErr   error

	lastInput port.CheckoutInput
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, input port.CheckoutInput) (port.CheckoutSession, error) {
	g.lastInput = input
	if g.createErr != nil {
		return port.CheckoutSession{}, g.createErr
	}
	return g.session, nil
}

func (g *stubGateway) VerifyWebhook(_ []byte, _ string) (port.WebhookEvent, error) {
	if g.verifyErr != nil {
		return port.WebhookEvent{}, g.verifyErr
	}
	return g.verifyEvent, nil
}
