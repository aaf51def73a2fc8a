package session

// Package session owns the in-memory session and its durable projection.
// The Store is the single source of truth for "who is logged in and with
// what credential"; every other component reads it through the vault or
// through Current and never mutates it directly.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// Options groups dependencies for Store.
type Options struct {
	Vault  ports.TokenVault
	API    ports.DirectoryAPI
	Logger *slog.Logger
}

// Store holds the current session and persists it through the vault.
// All mutations happen under one mutex; reads return value copies.
type Store struct {
	vault  ports.TokenVault
	api    ports.DirectoryAPI
	logger *slog.Logger

	mu   sync.Mutex
	sess domainauth.Session
	// role is the vault slot backing the current token.
	role domainauth.Role

	refreshGroup singleflight.Group
}

// NewStore constructs a session store. The session starts empty.
func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		vault:  opts.Vault,
		api:    opts.API,
		logger: logger,
		sess:   domainauth.EmptySession(),
	}
}

// Current returns a snapshot of the in-memory session.
func (s *Store) Current() domainauth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// ActiveRole returns the role slot backing the current token, or empty when
// unauthenticated.
func (s *Store) ActiveRole() domainauth.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// BeginLogin moves an unauthenticated session into the authenticating state.
// Any other starting state is left untouched.
func (s *Store) BeginLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.State == domainauth.StateUnauthenticated {
		s.sess.State = domainauth.StateAuthenticating
	}
}

// FailLogin returns an authenticating session to the unauthenticated state.
func (s *Store) FailLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.State == domainauth.StateAuthenticating {
		s.sess = domainauth.EmptySession()
	}
}

// Login commits a verified principal and token. The in-memory session is
// updated unconditionally; a vault write failure is returned as a storage
// error that callers may treat as non-fatal.
func (s *Store) Login(ctx context.Context, principal domainauth.Principal, token string, role domainauth.Role) error {
	if token == "" {
		return apperrors.Validation("login token is required")
	}
	if !role.Valid() {
		return apperrors.Validation("login role is required")
	}

	s.mu.Lock()
	p := principal
	s.sess = domainauth.Session{
		Principal: &p,
		Token:     token,
		State:     domainauth.StateAuthenticated,
	}
	s.role = role
	s.mu.Unlock()

	if err := s.vault.SaveToken(ctx, role, token); err != nil {
		s.logger.Error("persist token failed", "role", role, "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "persist token")
	}
	if err := s.vault.SaveProfile(ctx, principal); err != nil {
		s.logger.Error("persist profile failed", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "persist profile")
	}
	return nil
}

// Logout clears both role slots and the profile slot and resets the
// in-memory session. Calling it on an already-empty session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.sess = domainauth.EmptySession()
	s.role = ""
	s.mu.Unlock()

	if err := s.vault.Clear(ctx); err != nil {
		s.logger.Error("clear vault failed", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "clear vault")
	}
	return nil
}

// Restore rehydrates the in-memory session from the vault, invoked once at
// startup. The admin slot takes precedence over the candidate slot when
// both are populated (preserved legacy order). Tokens that parse as JWTs
// with an expiry in the past are treated as absent; anything else is
// optimistically valid until the first API call says otherwise.
func (s *Store) Restore(ctx context.Context) error {
	token, role, err := s.liveToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	profile, err := s.vault.Profile(ctx)
	if err != nil {
		s.logger.Error("restore profile failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = domainauth.Session{
		Principal: profile,
		Token:     token,
		State:     domainauth.StateAuthenticated,
	}
	s.role = role
	return nil
}

// liveToken scans the role slots in precedence order and returns the first
// token that is not a known-expired JWT.
func (s *Store) liveToken(ctx context.Context) (string, domainauth.Role, error) {
	var (
		found     string
		foundRole domainauth.Role
	)
	for _, role := range []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleCandidate} {
		token, err := s.vault.Token(ctx, role)
		if err != nil {
			return "", "", apperrors.Wrap(err, apperrors.ErrCodeStorage, "read token slot")
		}
		if token == "" {
			continue
		}
		if found != "" {
			s.logger.Debug("both role slots populated, keeping precedence slot",
				"kept", foundRole, "shadowed", role)
			continue
		}
		if tokenExpired(token) {
			s.logger.Debug("skipping expired token at restore", "role", role)
			continue
		}
		found, foundRole = token, role
	}
	return found, foundRole, nil
}

// RefreshPrincipal re-fetches the profile for the current token and
// overwrites the in-memory principal. Any failure is treated as a signal
// the token is invalid: the session is cleared entirely. Concurrent calls
// collapse into a single backend request.
func (s *Store) RefreshPrincipal(ctx context.Context) error {
	s.mu.Lock()
	token, role := s.sess.Token, s.role
	s.mu.Unlock()

	if token == "" {
		return apperrors.Validation("no active session to refresh")
	}

	_, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		principal, profileErr := s.api.Profile(ctx, role, token)
		if profileErr != nil {
			if logoutErr := s.Logout(ctx); logoutErr != nil {
				s.logger.Error("teardown after failed refresh", "error", logoutErr)
			}
			return nil, profileErr
		}

		s.mu.Lock()
		if s.sess.Token == token {
			p := principal
			s.sess.Principal = &p
		}
		s.mu.Unlock()

		if saveErr := s.vault.SaveProfile(ctx, principal); saveErr != nil {
			s.logger.Error("persist refreshed profile failed", "error", saveErr)
		}
		return nil, nil
	})
	return err
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens return false.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
