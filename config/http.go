package config

import "time"

// HTTPConfig contains outbound transport configuration.
type HTTPConfig struct {
	// Timeout bounds each outbound request. Zero relies on transport defaults.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// LoginPaths lists request paths that count as the login screen. A 401
	// observed on these paths clears the session but does not trigger the
	// redirect hook (guards against redirect loops).
	LoginPaths []string `env:"LOGIN_PATHS" envSeparator:";" envDefault:"/login;/admin/login"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (c *HTTPConfig) Sanitize() {
	if c.Timeout < 0 {
		c.Timeout = 0
	}
}

// StatsdConfig contains metrics sink configuration.
type StatsdConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Address string `env:"ADDRESS"`
	Prefix  string `env:"PREFIX"  envDefault:"hrclient"`
}
