package handlers

import (
	"net/http"
	"strconv"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

// ProductHandler exposes listing CRUD endpoints.
type ProductHandler struct {
	products *usecase.ProductService
	reviews  *usecase.ReviewService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(products *usecase.ProductService, reviews *usecase.ReviewService) *ProductHandler {
	return &ProductHandler{products: products, reviews: reviews}
}

// RegisterRoutes binds product routes. Mutating endpoints require authentication.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.GET("/:id/reviews", h.productReviews)
	r.POST("", auth, h.create)
	r.PUT("/:id", auth, h.update)
	r.DELETE("/:id", auth, h.remove)
}

// List godoc
// @Summary List available products
// @Tags Products
// @Produce json
// @Param category query string false "Category filter"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param location query string false "Region filter"
// @Param search query string false "Free text search"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} ProductListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) list(c *gin.Context) {
	filter := port.ProductFilter{
		Category: domain.ProductCategory(c.Query("category")),
		Location: domain.Region(c.Query("location")),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid min_price"))
			return
		}
		filter.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid max_price"))
			return
		}
		filter.MaxPrice = &v
	}

	page, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCategory, Status: http.StatusBadRequest, Message: "Unknown product category"},
		}, http.StatusInternalServerError, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Products: page.Products,
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
		HasMore:  page.HasMore,
	})
}

// Get godoc
// @Summary Fetch a single listing
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.GameProduct
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) get(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
		}, http.StatusInternalServerError, "failed to load product")
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) productReviews(c *gin.Context) {
	ctx := c.Request.Context()
	productID := c.Param("id")

	reviews, err := h.reviews.ListProductReviews(ctx, productID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
		}, http.StatusInternalServerError, "failed to load reviews")
		return
	}

	average := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, review := range reviews {
			sum += review.Rating
		}
		average = float64(sum) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, ProductReviewsResponse{
		Reviews:       reviews,
		AverageRating: average,
		Total:         len(reviews),
	})
}

// Create godoc
// @Summary Publish a new listing
// @Tags Products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Listing payload"
// @Success 201 {object} domain.GameProduct
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid product payload"))
		return
	}

	input := usecase.CreateProductInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      domain.ProductCategory(req.Category),
		GameName:      req.GameName,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Condition:     domain.ProductCondition(req.Condition),
		Location:      domain.Region(req.Location),
		Images:        req.Images,
		IsFeatured:    req.IsFeatured,
		Level:         req.Level,
		Rank:          req.Rank,
		Stats:         req.Stats,
	}

	product, err := h.products.CreateProduct(c.Request.Context(), user.ID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCategory, Status: http.StatusBadRequest, Message: "Unknown product category"},
			{Err: usecase.ErrInvalidCondition, Status: http.StatusBadRequest, Message: "Unknown product condition"},
			{Err: usecase.ErrInvalidPrice, Status: http.StatusBadRequest, Message: "Price must be positive"},
			{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "Missing required product fields"},
		}, http.StatusInternalServerError, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Update godoc
// @Summary Update an owned listing
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body domain.ProductPatch true "Fields to change"
// @Success 200 {object} domain.GameProduct
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}

	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid update payload"))
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
			{Err: usecase.ErrNotListingOwner, Status: http.StatusForbidden, Message: "Not authorized to update this product"},
			{Err: usecase.ErrEmptyPatch, Status: http.StatusBadRequest, Message: "Nothing to update"},
			{Err: usecase.ErrInvalidCondition, Status: http.StatusBadRequest, Message: "Unknown product condition"},
			{Err: usecase.ErrInvalidPrice, Status: http.StatusBadRequest, Message: "Price must be positive"},
		}, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete godoc
// @Summary Remove an owned listing
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) remove(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
			{Err: usecase.ErrNotListingOwner, Status: http.StatusForbidden, Message: "Not authorized to delete this product"},
		}, http.StatusInternalServerError, "failed to delete product")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
