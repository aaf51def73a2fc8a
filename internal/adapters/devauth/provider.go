package devauth

// Package devauth provides a simple, config-driven IdentityProvider for
// local development. It accepts any password for the configured identity
// and issues locally generated opaque tokens.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tanodigital/hr-client-go/config"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// Provider implements ports.IdentityProvider for local development.
type Provider struct {
	identity ports.FederatedIdentity

	mu      sync.Mutex
	revoked map[string]bool
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev provider from config.
func NewProvider(cfg config.DevIdentityConfig) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: email is required")
	}
	if cfg.UID == "" {
		return nil, errors.New("dev auth: UID is required")
	}
	return &Provider{
		identity: ports.FederatedIdentity{
			UID:         cfg.UID,
			Email:       cfg.Email,
			DisplayName: cfg.DisplayName,
		},
		revoked: make(map[string]bool),
	}, nil
}

// SignIn accepts any password for the configured email and mints a fresh token.
func (p *Provider) SignIn(_ context.Context, email, password string) (ports.FederatedIdentity, error) {
	if password == "" {
		return ports.FederatedIdentity{}, apperrors.InvalidCredentials("password is required")
	}
	if email != p.identity.Email {
		return ports.FederatedIdentity{}, apperrors.InvalidCredentials("unknown dev account")
	}

	token, err := randomToken(32)
	if err != nil {
		return ports.FederatedIdentity{}, fmt.Errorf("mint dev token: %w", err)
	}

	identity := p.identity
	identity.Token = token
	identity.ExpiresAt = time.Now().Add(8 * time.Hour)
	return identity, nil
}

// SignOut marks the token revoked. Revoked reports the state for tests.
func (p *Provider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[token] = true
	return nil
}

// Revoked reports whether SignOut was called for token.
func (p *Provider) Revoked(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revoked[token]
}

// CreateAccount reconfigures the dev identity in place and signs it in.
func (p *Provider) CreateAccount(ctx context.Context, email, password, displayName string) (ports.FederatedIdentity, error) {
	p.identity.Email = email
	p.identity.DisplayName = displayName
	return p.SignIn(ctx, email, password)
}

// UpdateDisplayName sets the display name on the dev identity.
func (p *Provider) UpdateDisplayName(_ context.Context, _ string, displayName string) error {
	p.identity.DisplayName = displayName
	return nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
