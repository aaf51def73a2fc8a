package auth

// Package auth contains simple hand-written test doubles for the session
// layer ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	apperrors "github.com/tanodigital/hr-client-go/internal/errors"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.DirectoryAPI     = (*MockDirectoryAPI)(nil)
	_ ports.TokenVault       = (*MemoryVault)(nil)
)

// MockIdentityProvider simulates the federated IdP with a fixed account
// table and revocation tracking.
type MockIdentityProvider struct {
	SignInFunc func(ctx context.Context, email, password string) (ports.FederatedIdentity, error)

	// Accounts maps email -> password for the default SignIn behavior.
	Accounts map[string]string
	// TokenFor maps email -> issued token; defaults to "fed-token-" + email.
	TokenFor map[string]string

	mu          sync.Mutex
	signInCalls int
	revoked     []string
}

// NewMockIdentityProvider creates a provider with one known account.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		Accounts: map[string]string{"user@example.com": "hunter2"},
		TokenFor: map[string]string{},
	}
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (ports.FederatedIdentity, error) {
	m.mu.Lock()
	m.signInCalls++
	m.mu.Unlock()

	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}

	stored, ok := m.Accounts[email]
	if !ok || stored != password {
		return ports.FederatedIdentity{}, apperrors.InvalidCredentials("identity provider rejected the credentials")
	}

	token := m.TokenFor[email]
	if token == "" {
		token = "fed-token-" + email
	}
	return ports.FederatedIdentity{
		UID:       "uid-" + email,
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *MockIdentityProvider) SignOut(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked = append(m.revoked, token)
	return nil
}

func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password, displayName string) (ports.FederatedIdentity, error) {
	if m.Accounts == nil {
		m.Accounts = map[string]string{}
	}
	if _, exists := m.Accounts[email]; exists {
		return ports.FederatedIdentity{}, apperrors.Validation("an account with this email already exists")
	}
	m.Accounts[email] = password
	identity, err := m.SignIn(ctx, email, password)
	identity.DisplayName = displayName
	return identity, err
}

func (m *MockIdentityProvider) UpdateDisplayName(context.Context, string, string) error {
	return nil
}

// SignInCalls reports how many times SignIn was invoked.
func (m *MockIdentityProvider) SignInCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signInCalls
}

// Revoked reports whether SignOut was called with token.
func (m *MockIdentityProvider) Revoked(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.revoked {
		if t == token {
			return true
		}
	}
	return false
}

// MockDirectoryAPI simulates the backend REST surface. Every invocation is
// recorded so tests can assert which endpoints were (not) called.
type MockDirectoryAPI struct {
	LoginFunc         func(ctx context.Context, role domainauth.Role, identifier, secret string) (string, error)
	ProfileFunc       func(ctx context.Context, role domainauth.Role, token string) (domainauth.Principal, error)
	RegisterFunc      func(ctx context.Context, role domainauth.Role, in ports.RegisterInput) error
	RequestOTPFunc    func(ctx context.Context, email string) error
	VerifyOTPFunc     func(ctx context.Context, email, otp string) error
	ResetPasswordFunc func(ctx context.Context, email, otp, newSecret string) error

	mu    sync.Mutex
	calls []string
}

// NewMockDirectoryAPI creates an API double whose defaults reject logins and
// succeed on everything else.
func NewMockDirectoryAPI() *MockDirectoryAPI {
	return &MockDirectoryAPI{}
}

func (m *MockDirectoryAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the ordered list of invoked operations.
func (m *MockDirectoryAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times the named operation was invoked.
func (m *MockDirectoryAPI) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockDirectoryAPI) Login(ctx context.Context, role domainauth.Role, identifier, secret string) (string, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, role, identifier, secret)
	}
	return "", apperrors.InvalidCredentials("invalid username or password")
}

func (m *MockDirectoryAPI) Profile(ctx context.Context, role domainauth.Role, token string) (domainauth.Principal, error) {
	m.record("Profile")
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, role, token)
	}
	return domainauth.Principal{}, apperrors.Unauthorized("profile request rejected")
}

func (m *MockDirectoryAPI) Register(ctx context.Context, role domainauth.Role, in ports.RegisterInput) error {
	m.record("Register")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, role, in)
	}
	return nil
}

func (m *MockDirectoryAPI) RequestOTP(ctx context.Context, email string) error {
	m.record("RequestOTP")
	if m.RequestOTPFunc != nil {
		return m.RequestOTPFunc(ctx, email)
	}
	return nil
}

func (m *MockDirectoryAPI) VerifyOTP(ctx context.Context, email, otp string) error {
	m.record("VerifyOTP")
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, otp)
	}
	return nil
}

func (m *MockDirectoryAPI) ResetPassword(ctx context.Context, email, otp, newSecret string) error {
	m.record("ResetPassword")
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, otp, newSecret)
	}
	return nil
}

// MemoryVault is an in-memory TokenVault with optional error injection.
type MemoryVault struct {
	SaveTokenErr   error
	TokenErr       error
	SaveProfileErr error
	ProfileErr     error
	ClearErr       error

	mu      sync.Mutex
	tokens  map[domainauth.Role]string
	profile *domainauth.Principal
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{tokens: make(map[domainauth.Role]string)}
}

func (v *MemoryVault) SaveToken(_ context.Context, role domainauth.Role, token string) error {
	if v.SaveTokenErr != nil {
		return v.SaveTokenErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[role] = token
	return nil
}

func (v *MemoryVault) Token(_ context.Context, role domainauth.Role) (string, error) {
	if v.TokenErr != nil {
		return "", v.TokenErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tokens[role], nil
}

func (v *MemoryVault) SaveProfile(_ context.Context, p domainauth.Principal) error {
	if v.SaveProfileErr != nil {
		return v.SaveProfileErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.profile = &p
	return nil
}

func (v *MemoryVault) Profile(context.Context) (*domainauth.Principal, error) {
	if v.ProfileErr != nil {
		return nil, v.ProfileErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.profile == nil {
		return nil, nil
	}
	p := *v.profile
	return &p, nil
}

func (v *MemoryVault) Clear(context.Context) error {
	if v.ClearErr != nil {
		return v.ClearErr
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens = make(map[domainauth.Role]string)
	v.profile = nil
	return nil
}
