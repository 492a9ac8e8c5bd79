package domain

import "time"

// ProductCategory enumerates the kinds of goods that can be listed.
type ProductCategory string

const (
	CategoryAccounts   ProductCategory = "accounts"
	CategoryItems      ProductCategory = "items"
	CategoryCharacters ProductCategory = "characters"
	CategorySkins      ProductCategory = "skins"
	CategoryCurrency   ProductCategory = "currency"
	CategoryBoosting   ProductCategory = "boosting"
)

// ProductCategories lists every category in display order.
func ProductCategories() []ProductCategory {
	return []ProductCategory{
		CategoryAccounts,
		CategoryItems,
		CategoryCharacters,
		CategorySkins,
		CategoryCurrency,
		CategoryBoosting,
	}
}

// Valid reports whether the category is a known value.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryAccounts, CategoryItems, CategoryCharacters, CategorySkins, CategoryCurrency, CategoryBoosting:
		return true
	}
	return false
}

// ProductCondition grades the state of a listed good.
type ProductCondition string

const (
	ConditionNew       ProductCondition = "new"
	ConditionExcellent ProductCondition = "excellent"
	ConditionGood      ProductCondition = "good"
	ConditionFair      ProductCondition = "fair"
)

// Valid reports whether the condition is a known value.
func (c ProductCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionExcellent, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// StatValue is the closed union of scalar types allowed inside listing stats
// (wins, kills, wear, float values and the like). The decoder accepts what
// JSON produces; anything non-scalar is rejected at the HTTP boundary.
type StatValue any

// GameProduct mirrors the persisted representation in the products collection.
type GameProduct struct {
	ID            string               `bson:"_id" json:"id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Category      ProductCategory      `bson:"category" json:"category"`
	GameName      string               `bson:"game_name" json:"game_name"`
	Price         float64              `bson:"price" json:"price"`
	OriginalPrice *float64             `bson:"original_price,omitempty" json:"original_price,omitempty"`
	Condition     ProductCondition     `bson:"condition" json:"condition"`
	Location      Region               `bson:"location" json:"location"`
	SellerID      string               `bson:"seller_id" json:"seller_id"`
	Images        []string             `bson:"images" json:"images"`
	IsFeatured    bool                 `bson:"is_featured" json:"is_featured"`
	IsAvailable   bool                 `bson:"is_available" json:"is_available"`
	Level         *int                 `bson:"level,omitempty" json:"level,omitempty"`
	Rank          string               `bson:"rank,omitempty" json:"rank,omitempty"`
	Stats         map[string]StatValue `bson:"stats" json:"stats"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
	ViewCount     int                  `bson:"view_count" json:"view_count"`
	FavoriteCount int                  `bson:"favorite_count" json:"favorite_count"`
}

// ProductPatch captures the seller-mutable listing fields. Nil values are
// left untouched by an update.
type ProductPatch struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Price       *float64             `json:"price,omitempty"`
	Condition   *ProductCondition    `json:"condition,omitempty"`
	IsAvailable *bool                `json:"is_available,omitempty"`
	Stats       map[string]StatValue `json:"stats,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p ProductPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Condition == nil && p.IsAvailable == nil && p.Stats == nil
}

// GameCount is the aggregation result backing the popular-games listing.
type GameCount struct {
	Name          string `bson:"_id" json:"name"`
	ListingsCount int    `bson:"count" json:"listings_count"`
}
