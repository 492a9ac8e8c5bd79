package handlers

import (
	"net/http"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

// popularGamesLimit caps the popular-games aggregation.
const popularGamesLimit = 20

// CatalogHandler serves static catalog data and aggregations.
type CatalogHandler struct {
	products *usecase.ProductService
	seed     *usecase.SeedService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(products *usecase.ProductService, seed *usecase.SeedService) *CatalogHandler {
	return &CatalogHandler{products: products, seed: seed}
}

// RegisterRoutes binds catalog routes. The sample-data endpoint is only
// registered in development environments.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, devMode bool) {
	r.GET("/categories", h.categories)
	r.GET("/games", h.popularGames)

	if devMode && h.seed != nil {
		r.POST("/init-sample-data", h.initSampleData)
	}
}

// Categories godoc
// @Summary List product categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.ProductCategory
// @Router /api/categories [get]
func (h *CatalogHandler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, domain.ProductCategories())
}

// PopularGames godoc
// @Summary Games ranked by listing count
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.GameCount
// @Router /api/games [get]
func (h *CatalogHandler) popularGames(c *gin.Context) {
	games, err := h.products.PopularGames(c.Request.Context(), popularGamesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load games"))
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *CatalogHandler) initSampleData(c *gin.Context) {
	result, err := h.seed.Seed(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to seed sample data"))
		return
	}

	c.JSON(http.StatusOK, result)
}
