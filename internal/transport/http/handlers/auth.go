package handlers

import (
	"net/http"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/transport/http/middleware"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// AuthRouteLimits carries optional per-endpoint middleware, one chain per
// credential endpoint so their rate limits stay independent.
type AuthRouteLimits struct {
	Register    []gin.HandlerFunc
	Login       []gin.HandlerFunc
	SocialLogin []gin.HandlerFunc
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the credential endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, limits AuthRouteLimits) {
	r.POST("/register", chain(limits.Register, h.register)...)
	r.POST("/login", chain(limits.Login, h.login)...)
	r.POST("/social-login", chain(limits.SocialLogin, h.socialLogin)...)
	r.GET("/me", middleware.RequireAuth(h.auth), h.me)
	r.POST("/logout", h.logout)
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := append([]gin.HandlerFunc{}, middlewares...)
	return append(out, handler)
}

// Register godoc
// @Summary Register a new user account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Location)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusBadRequest, Message: "Email already registered"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusBadRequest, Message: "Username already taken"},
			{Err: usecase.ErrInvalidLocation, Status: http.StatusBadRequest, Message: "Invalid location"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		User:      result.User,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Login godoc
// @Summary Authenticate with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password"},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:      result.User,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// SocialLogin godoc
// @Summary Authenticate with a provider-issued identity token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SocialLoginRequest true "Social login payload"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/auth/social-login [post]
func (h *AuthHandler) socialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid social login payload"))
		return
	}

	result, err := h.auth.SocialLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: port.ErrProviderTokenRejected, Status: http.StatusUnauthorized, Message: "Invalid identity token"},
			{Err: usecase.ErrProviderEmailMissing, Status: http.StatusBadRequest, Message: "Identity token carries no email"},
			{Err: port.ErrProviderUnavailable, Status: http.StatusServiceUnavailable, Message: "Identity provider unavailable"},
		}, http.StatusInternalServerError, "social login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		User:      result.User,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Me godoc
// @Summary Current account
// @Tags Authentication
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Authentication token required"))
		return
	}
	c.JSON(http.StatusOK, user.Redacted())
}

// Logout godoc
// @Summary Revoke the presented session token
// @Tags Authentication
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.GetHeader("Authorization")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenMissing, Status: http.StatusUnauthorized, Message: "Authentication token required"},
			{Err: usecase.ErrTokenInvalid, Status: http.StatusUnauthorized, Message: "Invalid token"},
		}, http.StatusInternalServerError, "logout failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
