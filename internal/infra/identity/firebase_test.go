package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap/zaptest"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/infra/config"
)

const testProjectID = "cocmarket-test"

type testSigner struct {
	key  *rsa.PrivateKey
	kid  string
	cert string
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.google.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	return &testSigner{key: key, kid: "test-kid", cert: string(certPEM)}
}

func (s *testSigner) certsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{s.kid: s.cert})
	}
}

func (s *testSigner) signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid

	signed, err := token.SignedString(s.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T, certsURL string) *FirebaseVerifier {
	t.Helper()

	return NewFirebaseVerifier(config.FirebaseSettings{
		ProjectID: testProjectID,
		CertsURL:  certsURL,
		Timeout:   2 * time.Second,
	}, zaptest.NewLogger(t))
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   "https://securetoken.google.com/" + testProjectID,
		"aud":   testProjectID,
		"sub":   "firebase-uid-1",
		"email": "player@example.com",
		"name":  "Pro Player",
		"iat":   now.Add(-time.Minute).Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"firebase": map[string]any{
			"sign_in_provider": "google.com",
		},
	}
}

func TestFirebaseVerifier_ValidToken(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(signer.certsHandler())
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)
	token := signer.signToken(t, validClaims(time.Now()))

	identity, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if identity.Email != "player@example.com" {
		t.Fatalf("unexpected email: %s", identity.Email)
	}
	if identity.DisplayName != "Pro Player" {
		t.Fatalf("unexpected display name: %s", identity.DisplayName)
	}
	if identity.Provider != "google.com" {
		t.Fatalf("unexpected provider: %s", identity.Provider)
	}
}

func TestFirebaseVerifier_SignInProvider(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(signer.certsHandler())
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)

	claims := validClaims(time.Now())
	claims["firebase"] = map[string]any{"sign_in_provider": "facebook.com"}
	identity, err := verifier.Verify(context.Background(), signer.signToken(t, claims))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.Provider != "facebook.com" {
		t.Fatalf("unexpected provider: %s", identity.Provider)
	}

	// Tokens without the nested firebase claim still verify.
	claims = validClaims(time.Now())
	delete(claims, "firebase")
	identity, err = verifier.Verify(context.Background(), signer.signToken(t, claims))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.Provider != "unknown" {
		t.Fatalf("expected provider fallback, got %s", identity.Provider)
	}
}

func TestFirebaseVerifier_ExpiredToken(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(signer.certsHandler())
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)

	claims := validClaims(time.Now())
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signer.signToken(t, claims)

	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, port.ErrProviderTokenRejected) {
		t.Fatalf("expected ErrProviderTokenRejected, got %v", err)
	}
}

func TestFirebaseVerifier_WrongAudience(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(signer.certsHandler())
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)

	claims := validClaims(time.Now())
	claims["aud"] = "some-other-project"
	token := signer.signToken(t, claims)

	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, port.ErrProviderTokenRejected) {
		t.Fatalf("expected ErrProviderTokenRejected, got %v", err)
	}
}

func TestFirebaseVerifier_WrongKey(t *testing.T) {
	signer := newTestSigner(t)
	other := newTestSigner(t)

	server := httptest.NewServer(signer.certsHandler())
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)

	token := other.signToken(t, validClaims(time.Now()))
	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, port.ErrProviderTokenRejected) {
		t.Fatalf("expected ErrProviderTokenRejected, got %v", err)
	}
}

func TestFirebaseVerifier_CertsUnreachable(t *testing.T) {
	signer := newTestSigner(t)
	server := httptest.NewServer(signer.certsHandler())
	server.Close()

	verifier := newTestVerifier(t, server.URL)
	token := signer.signToken(t, validClaims(time.Now()))

	if _, err := verifier.Verify(context.Background(), token); !errors.Is(err, port.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestFirebaseVerifier_EmptyToken(t *testing.T) {
	verifier := newTestVerifier(t, "http://127.0.0.1:0")

	if _, err := verifier.Verify(context.Background(), "  "); !errors.Is(err, port.ErrProviderTokenRejected) {
		t.Fatalf("expected ErrProviderTokenRejected, got %v", err)
	}
}

func TestFirebaseVerifier_CachesKeys(t *testing.T) {
	signer := newTestSigner(t)

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		signer.certsHandler()(w, r)
	}))
	defer server.Close()

	verifier := newTestVerifier(t, server.URL)
	token := signer.signToken(t, validClaims(time.Now()))

	for i := 0; i < 3; i++ {
		if _, err := verifier.Verify(context.Background(), token); err != nil {
			t.Fatalf("Verify returned error: %v", err)
		}
	}

	if hits != 1 {
		t.Fatalf("expected a single certs fetch, got %d", hits)
	}
}
