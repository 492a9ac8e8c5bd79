package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Grimm02938/COCMarket/internal/core/port"
	"github.com/Grimm02938/COCMarket/internal/infra/config"
)

const defaultCertsTTL = time.Hour

var errCertsUnavailable = errors.New("provider certs unavailable")

func isUnavailable(err error) bool {
	return errors.Is(err, errCertsUnavailable)
}

// FirebaseVerifier validates Google Identity Platform ID tokens. Tokens are
// RS256 JWTs signed with rotating keys published at the securetoken certs URL,
// so the verifier keeps a short-lived cache of the fetched certificates.
type FirebaseVerifier struct {
	cfg    config.FirebaseSettings
	client *http.Client
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewFirebaseVerifier constructs a verifier for the configured project.
func NewFirebaseVerifier(cfg config.FirebaseSettings, logger *zap.Logger) *FirebaseVerifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &FirebaseVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (v *FirebaseVerifier) WithClock(now func() time.Time) *FirebaseVerifier {
	if now != nil {
		v.now = now
	}
	return v
}

type idTokenClaims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// Verify checks the ID token signature and standard claims, returning the
// provider identity on success.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (port.ProviderIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return port.ProviderIdentity{}, port.ErrProviderTokenRejected
	}

	claims := &idTokenClaims{}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(v.now),
		jwt.WithIssuer(fmt.Sprintf("https://securetoken.google.com/%s", v.cfg.ProjectID)),
		jwt.WithAudience(v.cfg.ProjectID),
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		method, ok := t.Method.(*jwt.SigningMethodRSA)
		if !ok || method == nil {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		kid, _ := t.Header["kid"].(string)
		kid = strings.TrimSpace(kid)
		if kid == "" {
			return nil, fmt.Errorf("kid header not found")
		}

		return v.verificationKey(ctx, kid)
	}, parserOptions...)
	if err != nil {
		if isUnavailable(err) {
			return port.ProviderIdentity{}, port.ErrProviderUnavailable
		}
		v.logger.Debug("provider token rejected", zap.Error(err))
		return port.ProviderIdentity{}, port.ErrProviderTokenRejected
	}

	if parsed == nil || !parsed.Valid {
		return port.ProviderIdentity{}, port.ErrProviderTokenRejected
	}

	provider := strings.TrimSpace(claims.Firebase.SignInProvider)
	if provider == "" {
		provider = "unknown"
	}

	return port.ProviderIdentity{
		Email:       strings.TrimSpace(claims.Email),
		DisplayName: strings.TrimSpace(claims.Name),
		Provider:    provider,
	}, nil
}

func (v *FirebaseVerifier) verificationKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := v.now().Sub(v.fetchedAt) < defaultCertsTTL
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	key, ok = v.keys[kid]
	v.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("verification key %q not found", kid)
	}

	return key, nil
}

func (v *FirebaseVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.CertsURL, nil)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch certs: %w: %w", errCertsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch certs: %w: status %d", errCertsUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read certs response: %w: %w", errCertsUnavailable, err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return fmt.Errorf("decode certs response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := parseCertificateKey(certPEM)
		if err != nil {
			v.logger.Warn("skipping unparsable provider certificate", zap.String("kid", kid), zap.Error(err))
			continue
		}
		keys[kid] = key
	}

	if len(keys) == 0 {
		return fmt.Errorf("no usable verification keys in certs response")
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = v.now()
	v.mu.Unlock()

	return nil
}

func parseCertificateKey(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("no PEM block in certificate")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate key is %T, want RSA", cert.PublicKey)
	}

	return key, nil
}

var _ port.IdentityVerifier = (*FirebaseVerifier)(nil)
