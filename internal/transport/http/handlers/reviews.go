package handlers

import (
	"net/http"

	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

// ReviewHandler exposes review endpoints.
type ReviewHandler struct {
	reviews *usecase.ReviewService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews *usecase.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterRoutes binds review routes.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.POST("", auth, h.create)
	r.GET("/seller/:id", h.sellerReviews)
}

// Create godoc
// @Summary Review a purchased listing
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review payload"
// @Success 201 {object} domain.Review
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/reviews [post]
func (h *ReviewHandler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid review payload"))
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), user.ID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
			{Err: usecase.ErrInvalidRating, Status: http.StatusBadRequest, Message: "Rating must be between 1 and 5"},
			{Err: usecase.ErrOwnListingReview, Status: http.StatusForbidden, Message: "Cannot review your own listing"},
			{Err: usecase.ErrAlreadyReviewed, Status: http.StatusBadRequest, Message: "You already reviewed this listing"},
		}, http.StatusInternalServerError, "failed to create review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) sellerReviews(c *gin.Context) {
	reviews, err := h.reviews.ListSellerReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load reviews"))
		return
	}

	c.JSON(http.StatusOK, reviews)
}
