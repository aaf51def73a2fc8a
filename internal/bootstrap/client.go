package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/tanodigital/hr-client-go/config"
	"github.com/tanodigital/hr-client-go/internal/adapters/devauth"
	"github.com/tanodigital/hr-client-go/internal/adapters/oidc"
	"github.com/tanodigital/hr-client-go/internal/adapters/redisvault"
	"github.com/tanodigital/hr-client-go/internal/adapters/restapi"
	"github.com/tanodigital/hr-client-go/internal/adapters/sqlitevault"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/observability/statsd"
	"github.com/tanodigital/hr-client-go/internal/ports"
	"github.com/tanodigital/hr-client-go/internal/service"
	"github.com/tanodigital/hr-client-go/internal/session"
	"github.com/tanodigital/hr-client-go/internal/transport"
)

// Client is the assembled session layer: store, resolver, reset flow, and
// the authenticated HTTP client that API consumers should use.
type Client struct {
	Sessions *session.Store
	Resolver *service.Resolver
	Reset    *service.ResetFlow

	// HTTP carries the bearer credential on every request and applies the
	// global 401 teardown policy.
	HTTP *http.Client

	closers []io.Closer
}

// Options groups inputs for NewClient.
type Options struct {
	Config config.AppConfig
	Logger *slog.Logger

	// OnUnauthorized is invoked after a 401 tears the session down;
	// UI layers use it to return to the login screen.
	OnUnauthorized func(req *http.Request)
}

// NewClient wires adapters, store, and services from configuration, then
// restores any persisted session from the vault.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Statsd.Enabled,
		Address: cfg.Statsd.Address,
		Prefix:  cfg.Statsd.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{closers: []io.Closer{metrics}}

	vault, err := c.buildVault(cfg.Vault)
	if err != nil {
		c.closeAll(logger)
		return nil, err
	}

	api := restapi.NewClient(restapi.Options{
		Config:     cfg.Backend,
		HTTPClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		Logger:     logger,
	})

	provider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		c.closeAll(logger)
		return nil, err
	}

	c.Sessions = session.NewStore(session.Options{
		Vault:  vault,
		API:    api,
		Logger: logger,
	})
	if restoreErr := c.Sessions.Restore(ctx); restoreErr != nil {
		// A broken vault read means starting unauthenticated, nothing worse.
		logger.Warn("session restore failed", "error",
			apperrors.Wrap(restoreErr, apperrors.ErrCodeStorage, "restore session"))
	}

	c.Resolver = service.NewResolver(service.ResolverOptions{
		Provider: provider,
		API:      api,
		Sessions: c.Sessions,
		Logger:   logger,
		Metrics:  metrics,
	})
	c.Reset = service.NewResetFlow(service.ResetFlowOptions{
		API:    api,
		Logger: logger,
	})

	c.HTTP = transport.NewClient(transport.Options{
		Vault:          vault,
		Sessions:       c.Sessions,
		OnUnauthorized: opts.OnUnauthorized,
		LoginPaths:     cfg.HTTP.LoginPaths,
		Logger:         logger,
		Metrics:        metrics,
	}, cfg.HTTP.Timeout)

	return c, nil
}

// Close releases vault handles and the metrics connection.
func (c *Client) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) closeAll(logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("cleanup after failed bootstrap", "error", err)
	}
}

func (c *Client) buildVault(cfg config.VaultConfig) (ports.TokenVault, error) {
	switch cfg.Backend {
	case config.VaultBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, client)
		return redisvault.NewVault(client, cfg.Redis.KeyPrefix), nil
	case config.VaultBackendSQLite:
		vault, err := sqlitevault.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, vault)
		return vault, nil
	default:
		return nil, fmt.Errorf("unknown vault backend: %q", cfg.Backend)
	}
}

// buildProvider returns nil when no federated provider is configured; the
// resolver then runs backend-only logins.
func buildProvider(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	switch cfg.Provider.Mode {
	case config.AuthModeMock:
		p, err := devauth.NewProvider(cfg.Provider.DevIdentity)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.AuthModeOIDC:
		if cfg.Provider.Issuer == "" {
			logger.Info("federated provider not configured, backend-only login")
			return nil, nil
		}
		p, err := oidc.NewProvider(ctx, cfg.Provider, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.Provider.Mode)
	}
}
