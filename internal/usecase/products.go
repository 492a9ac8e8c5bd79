package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/repository"
)

var (
	// ErrProductNotFound indicates the listing does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrNotListingOwner indicates the actor does not own the listing.
	ErrNotListingOwner = errors.New("not the listing owner")
	// ErrInvalidCategory indicates an unknown product category.
	ErrInvalidCategory = errors.New("invalid product category")
	// ErrInvalidCondition indicates an unknown product condition.
	ErrInvalidCondition = errors.New("invalid product condition")
	// ErrInvalidPrice indicates a non-positive price.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrEmptyPatch indicates an update carrying no changes.
	ErrEmptyPatch = errors.New("nothing to update")
	// ErrMissingField indicates a required listing field is blank.
	ErrMissingField = errors.New("required field missing")
)

// ProductService implements listing management and discovery.
type ProductService struct {
	products port.ProductRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      NowFunc
}

// NewProductService constructs the product service.
func NewProductService(products port.ProductRepository, events port.EventPublisher, logger *zap.Logger, opts ...ProductOption) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ProductService{
		products: products,
		events:   events,
		logger:   logger,
		now:      defaultNow,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ProductOption customizes the product service.
type ProductOption func(*ProductService)

// WithProductClock injects a custom clock (primarily for testing).
func WithProductClock(now NowFunc) ProductOption {
	return func(s *ProductService) {
		if now != nil {
			s.now = now
		}
	}
}

// CreateProductInput carries the seller-supplied listing fields.
type CreateProductInput struct {
	Title         string
	Description   string
	Category      domain.ProductCategory
	GameName      string
	Price         float64
	OriginalPrice *float64
	Condition     domain.ProductCondition
	Location      domain.Region
	Images        []string
	IsFeatured    bool
	Level         *int
	Rank          string
	Stats         map[string]domain.StatValue
}

// CreateProduct validates and stores a new listing owned by the seller.
func (s *ProductService) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*domain.GameProduct, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.GameName = strings.TrimSpace(input.GameName)

	if input.Title == "" {
		return nil, fmt.Errorf("title: %w", ErrMissingField)
	}
	if input.GameName == "" {
		return nil, fmt.Errorf("game name: %w", ErrMissingField)
	}
	if !input.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if !input.Condition.Valid() {
		return nil, ErrInvalidCondition
	}
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	location := input.Location
	if !location.Valid() {
		location = domain.RegionFR
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	stats := input.Stats
	if stats == nil {
		stats = map[string]domain.StatValue{}
	}

	now := s.now().UTC()
	product := domain.GameProduct{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Description:   strings.TrimSpace(input.Description),
		Category:      input.Category,
		GameName:      input.GameName,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Condition:     input.Condition,
		Location:      location,
		SellerID:      sellerID,
		Images:        images,
		IsFeatured:    input.IsFeatured,
		IsAvailable:   true,
		Level:         input.Level,
		Rank:          strings.TrimSpace(input.Rank),
		Stats:         stats,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if s.events != nil {
		event := domain.ProductListedEvent{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			GameName:  product.GameName,
			Category:  string(product.Category),
			Price:     product.Price,
			ListedAt:  product.CreatedAt,
		}
		if err := s.events.PublishProductListed(ctx, event); err != nil {
			s.logger.Warn("publish product listed failed", zap.Error(err))
		}
	}

	return &product, nil
}

// GetProduct fetches a listing. When countView is set the view counter is
// bumped; a failed bump does not fail the read.
func (s *ProductService) GetProduct(ctx context.Context, id string, countView bool) (*domain.GameProduct, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if countView {
		if err := s.products.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("increment view count failed", zap.String("product_id", id), zap.Error(err))
		} else {
			product.ViewCount++
		}
	}

	return product, nil
}

// ProductPage is one page of listings plus paging hints.
type ProductPage struct {
	Products []domain.GameProduct
	Total    int64
	Page     int
	Limit    int
	HasMore  bool
}

// ListProducts returns a filtered page of available listings.
func (s *ProductService) ListProducts(ctx context.Context, filter port.ProductFilter) (ProductPage, error) {
	if filter.Category != "" && !domain.ProductCategory(filter.Category).Valid() {
		return ProductPage{}, ErrInvalidCategory
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}

	return ProductPage{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		HasMore:  int64(filter.Page*filter.Limit) < total,
	}, nil
}

// UpdateProduct applies a patch to a listing the actor owns.
func (s *ProductService) UpdateProduct(ctx context.Context, actorID, id string, patch domain.ProductPatch) (*domain.GameProduct, error) {
	if patch.IsZero() {
		return nil, ErrEmptyPatch
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if patch.Condition != nil && !patch.Condition.Valid() {
		return nil, ErrInvalidCondition
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if product.SellerID != actorID {
		return nil, ErrNotListingOwner
	}

	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return updated, nil
}

// DeleteProduct removes a listing the actor owns.
func (s *ProductService) DeleteProduct(ctx context.Context, actorID, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("get product: %w", err)
	}

	if product.SellerID != actorID {
		return ErrNotListingOwner
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

// PopularGames lists game names ranked by listing count.
func (s *ProductService) PopularGames(ctx context.Context, limit int) ([]domain.GameCount, error) {
	games, err := s.products.PopularGames(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular games: %w", err)
	}
	return games, nil
}
