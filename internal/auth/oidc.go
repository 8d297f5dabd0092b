package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/apexquest/apexquest/config"
)

// IdentityClaims is what we keep from a verified ID token.
type IdentityClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Verifier checks an identity provider's ID token. Abstracted so tests can
// substitute a static implementation.
type Verifier interface {
	Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error)
}

// OIDCVerifier validates ID tokens against the provider's published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, cfg *config.AuthConfig) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error) {
	token, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	var claims IdentityClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id token missing email claim")
	}
	return &claims, nil
}

// StaticVerifier accepts any token in the table. Development and test use
// only.
type StaticVerifier struct {
	Tokens map[string]*IdentityClaims
}

func (v *StaticVerifier) Verify(_ context.Context, rawIDToken string) (*IdentityClaims, error) {
	claims, ok := v.Tokens[rawIDToken]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return claims, nil
}
