package config

import (
	"os"
	"strings"
)

// AppConfig is the main client configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity provider configuration
//   - backend.go: backend REST API configuration
//   - vault.go: durable token vault configuration
//   - http.go: HTTP transport configuration
type AppConfig struct {
	// IsDev controls development mode behavior (mock provider defaults, debug logging).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Provider is the federated identity provider configuration.
	Provider ProviderConfig `envPrefix:"IDP_"`

	// Backend is the REST API configuration.
	Backend BackendConfig `envPrefix:"API_"`

	// Vault is the durable token storage configuration.
	Vault VaultConfig `envPrefix:"VAULT_"`

	// HTTP is the outbound transport configuration.
	HTTP HTTPConfig `envPrefix:"HTTP_"`

	// Statsd is the metrics sink configuration.
	Statsd StatsdConfig `envPrefix:"STATSD_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Backend.Sanitize()
	c.Vault.Sanitize()
	c.HTTP.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling; the SPAs
// this client replaces were configured that way).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
