package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanodigital/hr-client-go/config"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
)

// fakeIssuer stands up a minimal OIDC issuer: discovery, token, revocation,
// and the account-management surface.
type fakeIssuer struct {
	srv *httptest.Server

	tokenStatus  int
	tokenBody    map[string]any
	revokedToken string
	signUpCalls  int
	updateCalls  int
	accountsErr  string
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	f := &fakeIssuer{
		tokenStatus: http.StatusOK,
		tokenBody: map[string]any{
			"access_token": "at-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"issuer":                f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/auth",
			"token_endpoint":        f.srv.URL + "/token",
			"jwks_uri":              f.srv.URL + "/keys",
			"revocation_endpoint":   f.srv.URL + "/revoke",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		if f.tokenStatus != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		json.NewEncoder(w).Encode(f.tokenBody)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.revokedToken = r.Form.Get("token")
	})
	mux.HandleFunc("/v1/accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		f.signUpCalls++
		if f.accountsErr != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": f.accountsErr},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"idToken":   "id-1",
			"localId":   "uid-1",
			"expiresIn": "3600",
		})
	})
	mux.HandleFunc("/v1/accounts:update", func(w http.ResponseWriter, r *http.Request) {
		f.updateCalls++
		json.NewEncoder(w).Encode(map[string]string{})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIssuer) providerConfig() config.ProviderConfig {
	return config.ProviderConfig{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Issuer:       f.srv.URL,
		Scope:        "openid profile email",
		AccountsURL:  f.srv.URL + "/v1",
	}
}

func newFakeProvider(t *testing.T, f *fakeIssuer) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), f.providerConfig(), f.srv.Client())
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresClientIDAndIssuer(t *testing.T) {
	_, err := NewProvider(context.Background(), config.ProviderConfig{Issuer: "https://idp.example.com"}, nil)
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), config.ProviderConfig{ClientID: "client-1"}, nil)
	assert.Error(t, err)
}

func TestProvider_SignIn_AccessTokenFallback(t *testing.T) {
	f := newFakeIssuer(t)
	p := newFakeProvider(t, f)

	identity, err := p.SignIn(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)

	// No id_token in the response: the access token is the credential.
	assert.Equal(t, "at-1", identity.Token)
	assert.Equal(t, "jane@example.com", identity.Email)
}

func TestProvider_SignIn_RejectedCredentials(t *testing.T) {
	f := newFakeIssuer(t)
	f.tokenStatus = http.StatusBadRequest
	p := newFakeProvider(t, f)

	_, err := p.SignIn(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestProvider_SignIn_EmptyInputs(t *testing.T) {
	f := newFakeIssuer(t)
	p := newFakeProvider(t, f)

	_, err := p.SignIn(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProvider_SignOut_UsesDiscoveredRevocationEndpoint(t *testing.T) {
	f := newFakeIssuer(t)
	p := newFakeProvider(t, f)

	require.NoError(t, p.SignOut(context.Background(), "tok-1"))
	assert.Equal(t, "tok-1", f.revokedToken)
}

func TestProvider_SignOut_EmptyTokenIsNoop(t *testing.T) {
	f := newFakeIssuer(t)
	p := newFakeProvider(t, f)

	require.NoError(t, p.SignOut(context.Background(), ""))
	assert.Empty(t, f.revokedToken)
}

func TestProvider_CreateAccount_SignsUpAndSetsDisplayName(t *testing.T) {
	f := newFakeIssuer(t)
	p := newFakeProvider(t, f)

	identity, err := p.CreateAccount(context.Background(), "jane@example.com", "s3cret", "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", identity.UID)
	assert.Equal(t, "id-1", identity.Token)
	assert.Equal(t, "Jane Doe", identity.DisplayName)
	assert.Equal(t, 1, f.signUpCalls)
	assert.Equal(t, 1, f.updateCalls)
}

func TestProvider_CreateAccount_EmailExists(t *testing.T) {
	f := newFakeIssuer(t)
	f.accountsErr = "EMAIL_EXISTS"
	p := newFakeProvider(t, f)

	_, err := p.CreateAccount(context.Background(), "jane@example.com", "s3cret", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProvider_CreateAccount_Unconfigured(t *testing.T) {
	f := newFakeIssuer(t)
	cfg := f.providerConfig()
	cfg.AccountsURL = ""
	p, err := NewProvider(context.Background(), cfg, f.srv.Client())
	require.NoError(t, err)

	_, err = p.CreateAccount(context.Background(), "jane@example.com", "s3cret", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestTranslateAccountsError_WeakPassword(t *testing.T) {
	f := newFakeIssuer(t)
	f.accountsErr = "WEAK_PASSWORD : Password should be at least 6 characters"
	p := newFakeProvider(t, f)

	_, err := p.CreateAccount(context.Background(), "jane@example.com", "x", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
