package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Grimm02938/COCMarket/internal/core/domain"
	"github.com/Grimm02938/COCMarket/internal/usecase"
	"github.com/gin-gonic/gin"
)

type stubAuthenticator struct {
	user *domain.User
	err  error

	gotToken string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router
}

func TestRequireAuthForwardsHeaderVerbatim(t *testing.T) {
	// Prefix stripping belongs to the authenticator, so a bare token and a
	// "Bearer " one both pass through unchanged.
	for _, header := range []string{"Bearer session-token-123", "session-token-123"} {
		auth := &stubAuthenticator{user: &domain.User{ID: "u1", Username: "gamer"}}
		router := newAuthRouter(auth)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("header %q: expected 200, got %d body %s", header, rr.Code, rr.Body.String())
		}
		if auth.gotToken != header {
			t.Fatalf("expected header forwarded verbatim, got %q", auth.gotToken)
		}
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	auth := &stubAuthenticator{err: usecase.ErrTokenMissing}
	router := newAuthRouter(auth)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "Authentication token required" {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}

func TestRequireAuthRejectsInvalidToken(t *testing.T) {
	auth := &stubAuthenticator{err: usecase.ErrTokenInvalid}
	router := newAuthRouter(auth)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Detail != "Invalid or expired token" {
		t.Fatalf("unexpected detail %q", body.Detail)
	}
}
