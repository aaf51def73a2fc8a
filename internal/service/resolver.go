package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/observability/statsd"
	"github.com/tanodigital/hr-client-go/internal/ports"
	"github.com/tanodigital/hr-client-go/internal/session"
)

// ErrSuperseded is returned when a login attempt completed after a newer
// attempt was issued; its result is discarded and no session is committed.
var ErrSuperseded = errors.New("login attempt superseded by a newer attempt")

// ResolverOptions groups dependencies for Resolver.
type ResolverOptions struct {
	Provider ports.IdentityProvider
	API      ports.DirectoryAPI
	Sessions *session.Store
	Logger   *slog.Logger
	Metrics  *statsd.Client
}

// Resolver turns a credential attempt into a verified session. Credential
// sources are tried in a fixed order: the federated identity provider first
// (only for "@"-shaped identifiers), then the backend credential store.
// A role mismatch on an otherwise successful sign-in is terminal: the token
// is revoked and no later source is consulted.
type Resolver struct {
	sources  []credentialSource
	sessions *session.Store
	api      ports.DirectoryAPI
	provider ports.IdentityProvider
	logger   *slog.Logger
	metrics  *statsd.Client

	// seq stamps each attempt; only the latest issued attempt may commit.
	seq atomic.Uint64
}

// NewResolver constructs a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		sessions: opts.Sessions,
		api:      opts.API,
		provider: opts.Provider,
		logger:   logger,
		metrics:  opts.Metrics,
	}
	r.sources = []credentialSource{
		&federatedSource{provider: opts.Provider, api: opts.API, logger: logger},
		&localSource{api: opts.API},
	}
	return r
}

// outcomeKind classifies a single source's result. A terminal outcome stops
// the chain by type; exception-catching order plays no part.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeSkipped
	outcomeRetryable
	outcomeTerminal
)

type sourceResult struct {
	kind      outcomeKind
	token     string
	principal domainauth.Principal
	err       error
}

type credentialSource interface {
	name() domainauth.Source
	attempt(ctx context.Context, a domainauth.CredentialAttempt, role domainauth.Role) sourceResult
}

// Resolve tries each credential source in order and commits the first fully
// successful path (token issued + role verified) into the session store.
func (r *Resolver) Resolve(ctx context.Context, identifier, secret string, requiredRole domainauth.Role) (domainauth.Session, error) {
	if identifier == "" || secret == "" {
		return domainauth.EmptySession(), apperrors.Validation("identifier and password are required")
	}
	if !requiredRole.Valid() {
		return domainauth.EmptySession(), apperrors.Validation("required role is invalid")
	}

	attempt := domainauth.CredentialAttempt{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Secret:     secret,
		Seq:        r.seq.Add(1),
	}

	r.sessions.BeginLogin()

	var lastErr error
	for _, src := range r.sources {
		res := src.attempt(ctx, attempt, requiredRole)
		switch res.kind {
		case outcomeSuccess:
			return r.commit(ctx, attempt, res, requiredRole, src.name())
		case outcomeTerminal:
			r.sessions.FailLogin()
			r.count("login.unauthorized", map[string]string{"source": string(src.name())})
			return domainauth.EmptySession(), res.err
		case outcomeRetryable:
			r.logger.Debug("credential source failed, trying next",
				"attempt", attempt.ID, "source", src.name(), "error", res.err)
			lastErr = res.err
		case outcomeSkipped:
		}
	}

	r.sessions.FailLogin()
	r.count("login.failure", nil)
	if apperrors.IsNetwork(lastErr) {
		return domainauth.EmptySession(), lastErr
	}
	if lastErr != nil {
		r.logger.Debug("all credential sources rejected the attempt",
			"attempt", attempt.ID, "error", lastErr)
	}
	return domainauth.EmptySession(), apperrors.InvalidCredentials("invalid username or password")
}

// commit persists the resolved session unless a newer attempt was issued
// while this one was in flight.
func (r *Resolver) commit(ctx context.Context, attempt domainauth.CredentialAttempt, res sourceResult, role domainauth.Role, source domainauth.Source) (domainauth.Session, error) {
	if attempt.Seq != r.seq.Load() {
		r.logger.Info("discarding superseded login result",
			"attempt", attempt.ID, "seq", attempt.Seq)
		return domainauth.EmptySession(), ErrSuperseded
	}

	if err := r.sessions.Login(ctx, res.principal, res.token, role); err != nil {
		if !apperrors.IsStorage(err) {
			return domainauth.EmptySession(), err
		}
		// Storage failures do not block the in-memory session.
		r.logger.Warn("session persisted in memory only", "attempt", attempt.ID, "error", err)
	}

	r.count("login.success", map[string]string{"source": string(source), "role": string(role)})
	return r.sessions.Current(), nil
}

// Register creates an account for the given role. Candidates are registered
// with the federated provider first (account + display name), then mirrored
// into the backend; admins are backend-only.
func (r *Resolver) Register(ctx context.Context, role domainauth.Role, in ports.RegisterInput) error {
	if !role.Valid() {
		return apperrors.Validation("register role is invalid")
	}
	if in.Email == "" || in.Password == "" {
		return apperrors.Validation("email and password are required")
	}

	if role == domainauth.RoleCandidate && r.provider != nil {
		if _, err := r.provider.CreateAccount(ctx, in.Email, in.Password, in.DisplayName); err != nil {
			return err
		}
	}
	if err := r.api.Register(ctx, role, in); err != nil {
		return err
	}
	r.count("register.success", map[string]string{"role": string(role)})
	return nil
}

func (r *Resolver) count(name string, tags map[string]string) {
	r.metrics.Count(name, 1, tags)
}

// federatedSource signs in against the identity provider, then verifies the
// role through the backend profile endpoint using the federated token.
type federatedSource struct {
	provider ports.IdentityProvider
	api      ports.DirectoryAPI
	logger   *slog.Logger
}

func (s *federatedSource) name() domainauth.Source { return domainauth.SourceFederated }

func (s *federatedSource) attempt(ctx context.Context, a domainauth.CredentialAttempt, role domainauth.Role) sourceResult {
	if s.provider == nil || !a.FederatedEligible() {
		return sourceResult{kind: outcomeSkipped}
	}

	identity, err := s.provider.SignIn(ctx, a.Identifier, a.Secret)
	if err != nil {
		// Unknown account, wrong provider, or transport failure: the local
		// source still gets its turn.
		return sourceResult{kind: outcomeRetryable, err: err}
	}

	principal, err := s.api.Profile(ctx, role, identity.Token)
	if err != nil {
		return sourceResult{kind: outcomeRetryable, err: err}
	}

	if principal.Role != role {
		// Hard authorization failure: revoke the federated session and stop.
		// This must not fall through to the local source.
		if revokeErr := s.provider.SignOut(ctx, identity.Token); revokeErr != nil {
			s.logger.Error("revoke federated token failed", "attempt", a.ID, "error", revokeErr)
		}
		return sourceResult{
			kind: outcomeTerminal,
			err:  apperrors.Unauthorized(string(role) + " access required"),
		}
	}

	fillFromIdentity(&principal, identity)
	return sourceResult{kind: outcomeSuccess, token: identity.Token, principal: principal}
}

// localSource performs the backend password-grant login.
type localSource struct {
	api ports.DirectoryAPI
}

func (s *localSource) name() domainauth.Source { return domainauth.SourceLocal }

func (s *localSource) attempt(ctx context.Context, a domainauth.CredentialAttempt, role domainauth.Role) sourceResult {
	token, err := s.api.Login(ctx, role, a.Identifier, a.Secret)
	if err != nil {
		return sourceResult{kind: outcomeRetryable, err: err}
	}

	principal, err := s.api.Profile(ctx, role, token)
	if err != nil {
		return sourceResult{kind: outcomeRetryable, err: err}
	}

	if principal.Role != role {
		// Same hard semantics as the federated path; the backend token is
		// discarded, there is just nothing to revoke remotely.
		return sourceResult{
			kind: outcomeTerminal,
			err:  apperrors.Unauthorized(string(role) + " access required"),
		}
	}

	return sourceResult{kind: outcomeSuccess, token: token, principal: principal}
}

func fillFromIdentity(p *domainauth.Principal, identity ports.FederatedIdentity) {
	if p.ID == "" {
		p.ID = identity.UID
	}
	if p.Email == "" {
		p.Email = identity.Email
	}
	if p.DisplayName == "" {
		p.DisplayName = identity.DisplayName
	}
}
