package port

import (
	"context"
	"errors"
)

var (
	// ErrProviderTokenRejected indicates the identity provider actively
	// rejected the token (bad signature, expired, wrong audience).
	ErrProviderTokenRejected = errors.New("identity provider rejected token")
	// ErrProviderUnavailable indicates the provider could not be reached in
	// time; callers may treat this as transient and retry.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ProviderIdentity is the vouched-for identity extracted from a provider token.
type ProviderIdentity struct {
	Email       string
	DisplayName string
	Provider    string
}

// IdentityVerifier validates a third-party identity token and returns the
// identity it vouches for. Implementations must bound the verification with a
// timeout; a hung provider must not hang the caller.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (ProviderIdentity, error)
}
