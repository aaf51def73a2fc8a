package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	mocks "github.com/tanodigital/hr-client-go/internal/mocks/auth"
	"github.com/tanodigital/hr-client-go/internal/ports"
	"github.com/tanodigital/hr-client-go/internal/session"
)

type resolverFixture struct {
	provider *mocks.MockIdentityProvider
	api      *mocks.MockDirectoryAPI
	vault    *mocks.MemoryVault
	sessions *session.Store
	resolver *Resolver
}

func newResolverFixture() *resolverFixture {
	provider := mocks.NewMockIdentityProvider()
	api := mocks.NewMockDirectoryAPI()
	vault := mocks.NewMemoryVault()
	sessions := session.NewStore(session.Options{Vault: vault, API: api})
	resolver := NewResolver(ResolverOptions{
		Provider: provider,
		API:      api,
		Sessions: sessions,
	})
	return &resolverFixture{
		provider: provider,
		api:      api,
		vault:    vault,
		sessions: sessions,
		resolver: resolver,
	}
}

// profileWithRole wires the backend profile endpoint to accept any token and
// report the given role.
func (f *resolverFixture) profileWithRole(role domainauth.Role) {
	f.api.ProfileFunc = func(_ context.Context, _ domainauth.Role, token string) (domainauth.Principal, error) {
		return domainauth.Principal{ID: "u-1", Email: "user@example.com", Role: role}, nil
	}
}

func TestResolver_Resolve_FederatedSuccess(t *testing.T) {
	f := newResolverFixture()
	f.profileWithRole(domainauth.RoleCandidate)

	sess, err := f.resolver.Resolve(context.Background(), "user@example.com", "hunter2", domainauth.RoleCandidate)
	require.NoError(t, err)

	assert.True(t, sess.Authenticated())
	assert.Equal(t, "fed-token-user@example.com", sess.Token)
	assert.Equal(t, 1, f.provider.SignInCalls())
	// The federated path succeeded; the backend password grant never ran.
	assert.Equal(t, 0, f.api.CallCount("Login"))
}

func TestResolver_Resolve_NonEmailSkipsFederated(t *testing.T) {
	f := newResolverFixture()
	f.api.LoginFunc = func(_ context.Context, _ domainauth.Role, _, _ string) (string, error) {
		return "local-token", nil
	}
	f.profileWithRole(domainauth.RoleAdmin)

	sess, err := f.resolver.Resolve(context.Background(), "jdoe", "hunter2", domainauth.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, "local-token", sess.Token)
	assert.Equal(t, 0, f.provider.SignInCalls())
	assert.Equal(t, 1, f.api.CallCount("Login"))
}

func TestResolver_Resolve_FederatedFailureFallsBackToLocal(t *testing.T) {
	f := newResolverFixture()
	// Email is unknown to the provider but valid against the backend.
	f.api.LoginFunc = func(_ context.Context, _ domainauth.Role, identifier, _ string) (string, error) {
		assert.Equal(t, "other@example.com", identifier)
		return "local-token", nil
	}
	f.profileWithRole(domainauth.RoleCandidate)

	sess, err := f.resolver.Resolve(context.Background(), "other@example.com", "hunter2", domainauth.RoleCandidate)
	require.NoError(t, err)

	assert.Equal(t, "local-token", sess.Token)
	assert.Equal(t, 1, f.provider.SignInCalls())
	assert.Equal(t, 1, f.api.CallCount("Login"))
}

func TestResolver_Resolve_RoleMismatchIsTerminal(t *testing.T) {
	f := newResolverFixture()
	// The provider accepts the credentials but the backend reports the wrong
	// role for the requested surface.
	f.profileWithRole(domainauth.RoleCandidate)

	sess, err := f.resolver.Resolve(context.Background(), "user@example.com", "hunter2", domainauth.RoleAdmin)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	assert.False(t, sess.Authenticated())
	assert.False(t, f.sessions.Current().Authenticated())
	assert.True(t, f.provider.Revoked("fed-token-user@example.com"))
	// Terminal means no fall-through: the backend login must never run.
	assert.Equal(t, 0, f.api.CallCount("Login"))
}

func TestResolver_Resolve_AllSourcesReject(t *testing.T) {
	f := newResolverFixture()
	// Defaults: provider rejects unknown accounts, backend rejects logins.

	sess, err := f.resolver.Resolve(context.Background(), "nobody@example.com", "wrong", domainauth.RoleCandidate)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
	assert.False(t, sess.Authenticated())
	assert.Equal(t, domainauth.StateUnauthenticated, f.sessions.Current().State)
}

func TestResolver_Resolve_NetworkErrorSurfaces(t *testing.T) {
	f := newResolverFixture()
	f.api.LoginFunc = func(context.Context, domainauth.Role, string, string) (string, error) {
		return "", apperrors.Network("backend unreachable")
	}

	_, err := f.resolver.Resolve(context.Background(), "jdoe", "hunter2", domainauth.RoleAdmin)
	require.Error(t, err)
	// A transport failure is not a credentials problem and must not be
	// reported as one.
	assert.True(t, apperrors.IsNetwork(err))
}

func TestResolver_Resolve_EmptyCredentials(t *testing.T) {
	f := newResolverFixture()

	_, err := f.resolver.Resolve(context.Background(), "", "", domainauth.RoleAdmin)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.provider.SignInCalls())
	assert.Empty(t, f.api.Calls())
}

func TestResolver_Resolve_StorageFailureStillAuthenticates(t *testing.T) {
	f := newResolverFixture()
	f.vault.SaveTokenErr = apperrors.Storage("disk full")
	f.profileWithRole(domainauth.RoleCandidate)

	sess, err := f.resolver.Resolve(context.Background(), "user@example.com", "hunter2", domainauth.RoleCandidate)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
}

func TestResolver_Resolve_SupersededAttemptDiscarded(t *testing.T) {
	f := newResolverFixture()
	f.profileWithRole(domainauth.RoleCandidate)

	started := make(chan struct{})
	release := make(chan struct{})
	f.provider.SignInFunc = func(_ context.Context, email, _ string) (ports.FederatedIdentity, error) {
		if email == "slow@example.com" {
			close(started)
			<-release
		}
		return ports.FederatedIdentity{UID: "uid-" + email, Email: email, Token: "tok-" + email}, nil
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := f.resolver.Resolve(context.Background(), "slow@example.com", "pw", domainauth.RoleCandidate)
		errCh <- err
	}()
	<-started

	// A second attempt is issued while the first is still in flight.
	sess, err := f.resolver.Resolve(context.Background(), "fast@example.com", "pw", domainauth.RoleCandidate)
	require.NoError(t, err)
	assert.Equal(t, "tok-fast@example.com", sess.Token)

	close(release)
	require.ErrorIs(t, <-errCh, ErrSuperseded)

	// The newer attempt's session survives the older attempt's completion.
	assert.Equal(t, "tok-fast@example.com", f.sessions.Current().Token)
}

func TestResolver_Register_CandidateCreatesFederatedAccount(t *testing.T) {
	f := newResolverFixture()

	err := f.resolver.Register(context.Background(), domainauth.RoleCandidate, ports.RegisterInput{
		DisplayName: "Jane Doe",
		Email:       "new@example.com",
		Password:    "s3cret",
	})
	require.NoError(t, err)

	assert.Contains(t, f.provider.Accounts, "new@example.com")
	assert.Equal(t, 1, f.api.CallCount("Register"))
}

func TestResolver_Register_AdminIsBackendOnly(t *testing.T) {
	f := newResolverFixture()

	err := f.resolver.Register(context.Background(), domainauth.RoleAdmin, ports.RegisterInput{
		Username: "root",
		Email:    "admin@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)

	assert.NotContains(t, f.provider.Accounts, "admin@example.com")
	assert.Equal(t, 1, f.api.CallCount("Register"))
}

func TestResolver_Register_ValidationErrors(t *testing.T) {
	f := newResolverFixture()

	err := f.resolver.Register(context.Background(), domainauth.RoleCandidate, ports.RegisterInput{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, f.api.CallCount("Register"))
}
