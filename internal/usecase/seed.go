package usecase

import (
	"context"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
)

// SeedService populates a fresh database with demo listings and sellers.
// Exposed in development environments only.
type SeedService struct {
	products port.ProductRepository
	users    port.UserRepository
	logger   *zap.Logger
	now      NowFunc
}

// NewSeedService constructs the seeder.
func NewSeedService(products port.ProductRepository, users port.UserRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{products: products, users: users, logger: logger, now: defaultNow}
}

// SeedResult reports what the seed run created.
type SeedResult struct {
	AlreadySeeded   bool
	ProductsCreated int
	UsersCreated    int
}

// Seed inserts the sample catalog unless listings already exist.
func (s *SeedService) Seed(ctx context.Context) (SeedResult, error) {
	existing, err := s.products.Count(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		return SeedResult{AlreadySeeded: true}, nil
	}

	now := s.now().UTC()
	sellers := sampleSellers(now)
	products := sampleProducts(now, sellers[0].ID, sellers[1].ID)

	if err := s.products.CreateMany(ctx, products); err != nil {
		return SeedResult{}, fmt.Errorf("seed products: %w", err)
	}

	created := 0
	for _, seller := range sellers {
		if err := s.users.Create(ctx, seller); err != nil {
			// Seller may survive from an earlier partial seed.
			s.logger.Warn("seed user skipped", zap.String("username", seller.Username), zap.Error(err))
			continue
		}
		created++
	}

	s.logger.Info("sample data initialized",
		zap.Int("products", len(products)),
		zap.Int("users", created),
	)

	return SeedResult{ProductsCreated: len(products), UsersCreated: created}, nil
}

func sampleSellers(now time.Time) []domain.User {
	lastSeen := now.Add(-2 * time.Hour)

	return []domain.User{
		{
			ID:             "sample_seller_1",
			Username:       "GamerPro123",
			Email:          "gamer@example.com",
			Location:       domain.RegionFR,
			TrustScore:     4.8,
			TotalSales:     15,
			TotalPurchases: 3,
			MemberSince:    now.AddDate(0, 0, -90),
			IsVerified:     true,
			Badges:         []string{"Vendeur fiable", "Réponse rapide"},
			DisplayName:    "GamerPro123",
			Bio:            "Vendeur de comptes gaming depuis 2 ans",
			IsOnline:       true,
			AuthProvider:   domain.AuthProviderEmail,
		},
		{
			ID:             "sample_seller_2",
			Username:       "SkinDealer",
			Email:          "dealer@example.com",
			Location:       domain.RegionFR,
			TrustScore:     4.5,
			TotalSales:     8,
			TotalPurchases: 12,
			MemberSince:    now.AddDate(0, 0, -45),
			IsVerified:     true,
			Badges:         []string{"Nouveau vendeur"},
			DisplayName:    "Skin Dealer",
			Bio:            "Spécialisé dans les skins CS:GO",
			IsOnline:       false,
			LastSeen:       &lastSeen,
			AuthProvider:   domain.AuthProviderEmail,
		},
	}
}

func sampleProducts(now time.Time, sellerOne, sellerTwo string) []domain.GameProduct {
	originalPrice := 60.00
	level := 150

	return []domain.GameProduct{
		{
			ID:            uuid.NewString(),
			Title:         "Compte Fortnite niveau 150 avec skin rare",
			Description:   "Compte Fortnite avec de nombreux skins rares, niveau 150, plus de 200 victoires royales",
			Category:      domain.CategoryAccounts,
			GameName:      "Fortnite",
			Price:         45.99,
			OriginalPrice: &originalPrice,
			Condition:     domain.ConditionExcellent,
			Location:      domain.RegionFR,
			SellerID:      sellerOne,
			Images:        []string{},
			IsFeatured:    true,
			IsAvailable:   true,
			Level:         &level,
			Stats:         map[string]domain.StatValue{"wins": 200, "kills": 1500},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "V-Bucks Fortnite - 2800 V-Bucks",
			Description: "2800 V-Bucks pour Fortnite, livraison immédiate",
			Category:    domain.CategoryCurrency,
			GameName:    "Fortnite",
			Price:       19.99,
			Condition:   domain.ConditionNew,
			Location:    domain.RegionFR,
			SellerID:    sellerTwo,
			Images:      []string{},
			IsAvailable: true,
			Stats:       map[string]domain.StatValue{"amount": 2800},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Title:       "Skin CS:GO AK-47 Redline",
			Description: "Skin AK-47 Redline Field-Tested, très bon état",
			Category:    domain.CategorySkins,
			GameName:    "CS:GO",
			Price:       25.50,
			Condition:   domain.ConditionGood,
			Location:    domain.RegionEU,
			SellerID:    sellerOne,
			Images:      []string{},
			IsAvailable: true,
			Stats:       map[string]domain.StatValue{"wear": "Field-Tested", "float": 0.15},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
