package port

import (
	"context"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
)

// ProductFilter narrows the listing search. Nil/zero fields mean "no constraint".
type ProductFilter struct {
	Category      domain.ProductCategory
	MinPrice      *float64
	MaxPrice      *float64
	Location      domain.Region
	Search        string
	IncludeHidden bool
	Page          int
	Limit         int
}

// ProductRepository exposes persistence behavior for listings.
type ProductRepository interface {
	Create(ctx context.Context, product domain.GameProduct) error
	CreateMany(ctx context.Context, products []domain.GameProduct) error
	GetByID(ctx context.Context, id string) (*domain.GameProduct, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.GameProduct, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) ([]domain.GameProduct, int64, error)
	Count(ctx context.Context) (int64, error)
	IncrementViews(ctx context.Context, id string) error
	MarkUnavailable(ctx context.Context, id string) error
	PopularGames(ctx context.Context, limit int) ([]domain.GameCount, error)
}
