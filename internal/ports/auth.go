package ports

// Package ports defines interfaces (hexagonal ports) for the session layer.
// Implementations live in internal/adapters; orchestration in internal/service
// and internal/session.

import (
	"context"
	"time"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
)

// FederatedIdentity is the result of a successful federated sign-in.
type FederatedIdentity struct {
	UID         string
	Email       string
	DisplayName string
	// Token is the short-lived ID token issued by the provider. It doubles
	// as the bearer credential against the backend.
	Token     string
	ExpiresAt time.Time
}

// IdentityProvider is the federated identity provider (email/password and
// OAuth sign-in). Implementations translate provider-specific failures into
// the internal/errors taxonomy.
type IdentityProvider interface {
	// SignIn exchanges email/password credentials for a short-lived ID token.
	SignIn(ctx context.Context, email, password string) (FederatedIdentity, error)

	// SignOut revokes a previously issued token. Used when a federated
	// sign-in succeeds but role verification fails.
	SignOut(ctx context.Context, token string) error

	// CreateAccount registers a new federated account and returns its identity.
	CreateAccount(ctx context.Context, email, password, displayName string) (FederatedIdentity, error)

	// UpdateDisplayName sets the display name on the account behind token.
	UpdateDisplayName(ctx context.Context, token, displayName string) error
}

// RegisterInput carries account-creation fields for the backend.
type RegisterInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

// DirectoryAPI is the backend REST surface for credentials, profiles, and
// the password-reset flow. Endpoints differ per role.
type DirectoryAPI interface {
	// Login performs a password-grant login and returns a bearer token.
	Login(ctx context.Context, role domainauth.Role, identifier, secret string) (string, error)

	// Profile fetches the principal for the given token.
	Profile(ctx context.Context, role domainauth.Role, token string) (domainauth.Principal, error)

	// Register creates a backend account for the given role.
	Register(ctx context.Context, role domainauth.Role, in RegisterInput) error

	// RequestOTP asks the backend to issue a one-time reset code out of band.
	RequestOTP(ctx context.Context, email string) error

	// VerifyOTP validates a one-time code, authorizing a subsequent reset.
	VerifyOTP(ctx context.Context, email, otp string) error

	// ResetPassword invalidates the OTP and commits the new credential.
	ResetPassword(ctx context.Context, email, otp, newSecret string) error
}

// TokenVault is the durable client-side credential store. It holds one
// independent token slot per role plus a shared serialized-profile slot, so
// an admin session and a candidate session can coexist without collision.
// Writing a role slot overwrites the previous value unconditionally.
type TokenVault interface {
	// SaveToken writes the token into the slot for role.
	SaveToken(ctx context.Context, role domainauth.Role, token string) error

	// Token reads the slot for role. An empty slot yields ("", nil).
	Token(ctx context.Context, role domainauth.Role) (string, error)

	// SaveProfile writes the shared profile slot.
	SaveProfile(ctx context.Context, p domainauth.Principal) error

	// Profile reads the shared profile slot. An empty slot yields (nil, nil).
	Profile(ctx context.Context) (*domainauth.Principal, error)

	// Clear removes both role slots and the profile slot.
	Clear(ctx context.Context) error
}
