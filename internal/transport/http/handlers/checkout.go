package handlers

import (
	"io"
	"net/http"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

// webhookBodyLimit caps the accepted webhook payload size.
const webhookBodyLimit = 1 << 20

// CheckoutHandler exposes the payment endpoints.
type CheckoutHandler struct {
	checkout *usecase.CheckoutService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(checkout *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// RegisterRoutes binds payment routes. The webhook stays unauthenticated; it
// carries its own signature.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	r.POST("/create-checkout-session", auth, h.createSession)
	r.POST("/webhook", h.webhook)
}

// CreateSession godoc
// @Summary Open a hosted payment page for a listing
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CreateCheckoutRequest true "Checkout payload"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/stripe/create-checkout-session [post]
func (h *CheckoutHandler) createSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid checkout payload"))
		return
	}

	session, err := h.checkout.CreateCheckout(c.Request.Context(), user.ID, req.ProductID, req.OriginURL)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrProductNotFound, Status: http.StatusNotFound, Message: "Product not found"},
			{Err: usecase.ErrProductUnavailable, Status: http.StatusBadRequest, Message: "Product is no longer available"},
			{Err: usecase.ErrOwnListingPurchase, Status: http.StatusBadRequest, Message: "Cannot buy your own listing"},
		}, http.StatusBadRequest, "failed to start checkout")
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	})
}

// Webhook godoc
// @Summary Payment gateway callback
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/stripe/webhook [post]
func (h *CheckoutHandler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unreadable webhook payload"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.checkout.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: port.ErrWebhookSignatureInvalid, Status: http.StatusBadRequest, Message: "Invalid webhook signature"},
			{Err: port.ErrWebhookPayloadInvalid, Status: http.StatusBadRequest, Message: "Invalid webhook payload"},
		}, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Status: "success"})
}
