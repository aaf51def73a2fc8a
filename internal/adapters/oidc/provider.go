package oidc

// Package oidc implements the IdentityProvider port against the federated
// identity provider: OIDC discovery and token verification for sign-in,
// plus the provider's account-management REST surface for sign-up and
// profile updates. All provider-specific failures are translated into the
// internal/errors taxonomy here and nowhere else.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/tanodigital/hr-client-go/config"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// Provider implements ports.IdentityProvider using OIDC password grant.
type Provider struct {
	oauthCfg    *oauth2.Config
	verifier    *gooidc.IDTokenVerifier
	accountsURL string
	revokeURL   string
	httpClient  *http.Client
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider discovers the issuer and constructs a federated provider.
func NewProvider(ctx context.Context, cfg config.ProviderConfig, httpClient *http.Client) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	op, err := gooidc.NewProvider(ctx, strings.TrimSuffix(cfg.Issuer, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	revokeURL := cfg.RevokeURL
	if revokeURL == "" {
		// Discovery metadata advertises the revocation endpoint when the
		// provider supports RFC 7009.
		var meta struct {
			RevocationEndpoint string `json:"revocation_endpoint"`
		}
		if claimsErr := op.Claims(&meta); claimsErr == nil {
			revokeURL = meta.RevocationEndpoint
		}
	}

	return &Provider{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		verifier:    op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		accountsURL: strings.TrimRight(cfg.AccountsURL, "/"),
		revokeURL:   revokeURL,
		httpClient:  httpClient,
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (ports.FederatedIdentity, error) {
	if email == "" || password == "" {
		return ports.FederatedIdentity{}, apperrors.Validation("email and password are required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.oauthCfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return ports.FederatedIdentity{}, translateTokenError(err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		// Provider did not attach an ID token; fall back to the access token
		// as the bearer credential and skip local claim verification.
		return ports.FederatedIdentity{
			Email:     email,
			Token:     tok.AccessToken,
			ExpiresAt: tok.Expiry,
		}, nil
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return ports.FederatedIdentity{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "verify ID token")
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if claimsErr := idToken.Claims(&claims); claimsErr != nil {
		return ports.FederatedIdentity{}, apperrors.Wrap(claimsErr, apperrors.ErrCodeInternal, "decode ID token claims")
	}
	if claims.Email == "" {
		claims.Email = email
	}

	return ports.FederatedIdentity{
		UID:         idToken.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Token:       rawIDToken,
		ExpiresAt:   idToken.Expiry,
	}, nil
}

func (p *Provider) SignOut(ctx context.Context, token string) error {
	if token == "" || p.revokeURL == "" {
		return nil
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build revoke request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.oauthCfg.ClientID, p.oauthCfg.ClientSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "revoke token")
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on revoke

	if resp.StatusCode != http.StatusOK {
		return apperrors.Internalf("revoke token failed with status %d", resp.StatusCode)
	}
	return nil
}

func (p *Provider) CreateAccount(ctx context.Context, email, password, displayName string) (ports.FederatedIdentity, error) {
	if p.accountsURL == "" {
		return ports.FederatedIdentity{}, apperrors.Internal("account creation is not configured")
	}

	var result struct {
		IDToken   string `json:"idToken"`
		LocalID   string `json:"localId"`
		ExpiresIn string `json:"expiresIn"`
	}
	err := p.postAccounts(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &result)
	if err != nil {
		return ports.FederatedIdentity{}, err
	}

	identity := ports.FederatedIdentity{
		UID:         result.LocalID,
		Email:       email,
		DisplayName: displayName,
		Token:       result.IDToken,
		ExpiresAt:   expiryFromSeconds(result.ExpiresIn),
	}

	if displayName != "" {
		if updateErr := p.UpdateDisplayName(ctx, result.IDToken, displayName); updateErr != nil {
			return identity, updateErr
		}
	}
	return identity, nil
}

func (p *Provider) UpdateDisplayName(ctx context.Context, token, displayName string) error {
	if p.accountsURL == "" {
		return apperrors.Internal("account updates are not configured")
	}
	return p.postAccounts(ctx, "accounts:update", map[string]any{
		"idToken":     token,
		"displayName": displayName,
	}, nil)
}

func (p *Provider) postAccounts(ctx context.Context, op string, body map[string]any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal account request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.accountsURL+"/"+op, bytes.NewReader(data))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build account request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeNetwork, "provider %s", op)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return translateAccountsError(resp, op)
	}
	if out == nil {
		return nil
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return apperrors.Wrapf(decodeErr, apperrors.ErrCodeInternal, "decode %s response", op)
	}
	return nil
}

// translateTokenError is the single point mapping token-endpoint failures
// onto the closed error-kind set.
func translateTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.InvalidCredentials("identity provider rejected the credentials")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "identity provider token exchange")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeNetwork, "reach identity provider")
}

// translateAccountsError maps account-endpoint failures. The provider
// answers with {"error": {"message": "EMAIL_EXISTS"}}-style payloads.
func translateAccountsError(resp *http.Response, op string) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil {
		msg := envelope.Error.Message
		switch {
		case strings.Contains(msg, "EMAIL_EXISTS"):
			return apperrors.Validation("an account with this email already exists")
		case strings.Contains(msg, "WEAK_PASSWORD"):
			return apperrors.Validation("password does not meet provider requirements")
		case strings.Contains(msg, "INVALID_ID_TOKEN"), strings.Contains(msg, "TOKEN_EXPIRED"):
			return apperrors.InvalidCredentials("provider token is no longer valid")
		}
		if msg != "" {
			return apperrors.Internalf("provider %s failed: %s", op, msg)
		}
	}
	return apperrors.Internalf("provider %s failed with status %d", op, resp.StatusCode)
}

func expiryFromSeconds(s string) time.Time {
	d, err := time.ParseDuration(s + "s")
	if err != nil || d <= 0 {
		return time.Now().Add(time.Hour)
	}
	return time.Now().Add(d)
}
