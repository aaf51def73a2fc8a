package transport

// Package transport wraps an http.RoundTripper so that every outbound
// request carries the current bearer credential and every 401 response
// tears the session down uniformly, no matter which caller issued the
// request.

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	"github.com/tanodigital/hr-client-go/internal/observability/statsd"
	"github.com/tanodigital/hr-client-go/internal/ports"
	"github.com/tanodigital/hr-client-go/internal/session"
)

// Options groups dependencies for the authenticated round tripper.
type Options struct {
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper

	// Vault is read directly on every request so a logout performed by
	// another process is observed without a stale in-memory read.
	Vault ports.TokenVault

	Sessions *session.Store

	// OnUnauthorized is invoked after session teardown when a 401 arrives,
	// typically to send the user back to the login screen. Skipped when the
	// failing request itself targeted a login path.
	OnUnauthorized func(req *http.Request)

	// LoginPaths are substrings identifying login-screen requests.
	LoginPaths []string

	Logger  *slog.Logger
	Metrics *statsd.Client
}

// RoundTripper attaches bearer credentials and applies the global 401 policy.
type RoundTripper struct {
	base           http.RoundTripper
	vault          ports.TokenVault
	sessions       *session.Store
	onUnauthorized func(req *http.Request)
	loginPaths     []string
	logger         *slog.Logger
	metrics        *statsd.Client
}

var _ http.RoundTripper = (*RoundTripper)(nil)

// New constructs the authenticated round tripper.
func New(opts Options) *RoundTripper {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundTripper{
		base:           base,
		vault:          opts.Vault,
		sessions:       opts.Sessions,
		onUnauthorized: opts.OnUnauthorized,
		loginPaths:     opts.LoginPaths,
		logger:         logger,
		metrics:        opts.Metrics,
	}
}

// NewClient wraps the round tripper in an http.Client with the given timeout.
func NewClient(opts Options, timeout time.Duration) *http.Client {
	return &http.Client{Transport: New(opts), Timeout: timeout}
}

// RoundTrip implements http.RoundTripper.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if token := t.currentToken(req); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.handleUnauthorized(req)
	}
	return resp, nil
}

// currentToken reads the active-role slot from durable storage. A missing
// token is fine: public endpoints go out unauthenticated. A storage failure
// is logged and treated the same way.
func (t *RoundTripper) currentToken(req *http.Request) string {
	roles := []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleCandidate}
	if active := t.sessions.ActiveRole(); active != "" {
		roles = []domainauth.Role{active}
	}

	for _, role := range roles {
		token, err := t.vault.Token(req.Context(), role)
		if err != nil {
			t.logger.Error("read token from vault failed", "role", role, "error", err)
			return ""
		}
		if token != "" {
			return token
		}
	}
	return ""
}

// handleUnauthorized clears the session, then redirects. Teardown always
// happens before the redirect hook runs, so a caller observing the failed
// response may already read an empty session.
func (t *RoundTripper) handleUnauthorized(req *http.Request) {
	t.logger.Warn("request rejected with 401, clearing session",
		"method", req.Method, "path", req.URL.Path)
	t.metrics.Count("transport.unauthorized", 1, nil)

	if err := t.sessions.Logout(req.Context()); err != nil {
		t.logger.Error("session teardown after 401 failed", "error", err)
	}

	if t.isLoginPath(req.URL.Path) {
		return
	}
	if t.onUnauthorized != nil {
		t.onUnauthorized(req)
	}
}

func (t *RoundTripper) isLoginPath(path string) bool {
	for _, p := range t.loginPaths {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}
