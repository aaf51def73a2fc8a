package config

import (
	"fmt"
	"strings"
)

// AuthMode represents how federated sign-in is performed.
type AuthMode string

const (
	// AuthModeOIDC uses the real identity provider (OIDC discovery + password grant).
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses a config-driven static identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, mock)", v)
	}
}

// ProviderConfig contains federated identity provider configuration.
type ProviderConfig struct {
	// Mode determines which identity provider implementation to use.
	Mode AuthMode `env:"MODE" envDefault:"oidc"`

	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	// Issuer is the OIDC issuer URL; discovery resolves token and revocation
	// endpoints from it.
	Issuer string `env:"ISSUER"`
	Scope  string `env:"SCOPE" envDefault:"openid profile email"`

	// AccountsURL is the provider's account-management REST base
	// (sign-up and profile-update operations outside the OIDC core).
	AccountsURL string `env:"ACCOUNTS_URL"`

	// RevokeURL overrides the discovered revocation endpoint when set.
	RevokeURL string `env:"REVOKE_URL"`

	// DevIdentity configures the mock provider (used when Mode=mock).
	DevIdentity DevIdentityConfig `envPrefix:"DEV_"`
}

// DevIdentityConfig controls the mock provider identity.
type DevIdentityConfig struct {
	UID         string `env:"UID"          envDefault:"dev-user"`
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Dev User"`
}
