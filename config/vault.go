package config

import (
	"fmt"
	"strings"
)

// VaultBackend selects the durable token storage implementation.
type VaultBackend string

const (
	// VaultBackendSQLite stores tokens in a local SQLite file. This is the
	// default and survives client restarts on one machine.
	VaultBackendSQLite VaultBackend = "sqlite"
	// VaultBackendRedis stores tokens in Redis, shared across processes.
	VaultBackendRedis VaultBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for VaultBackend.
func (v *VaultBackend) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	switch s {
	case "sqlite", "redis":
		*v = VaultBackend(s)
		return nil
	default:
		return fmt.Errorf("invalid VaultBackend: %q (valid options: sqlite, redis)", s)
	}
}

// VaultConfig contains durable token vault configuration.
type VaultConfig struct {
	// Backend selects the vault implementation.
	Backend VaultBackend `env:"BACKEND" envDefault:"sqlite"`

	// Path is the SQLite database file (used when Backend=sqlite).
	Path string `env:"PATH" envDefault:".hrclient/vault.db"`

	// Redis configuration (used when Backend=redis).
	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig contains Redis connection settings for the shared vault.
type RedisConfig struct {
	Addr      string `env:"ADDR"       envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB"         envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"hrclient:"`
}

// Sanitize applies guardrails to vault configuration values.
func (c *VaultConfig) Sanitize() {
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = ".hrclient/vault.db"
	}
}
