package auth

// Package auth contains domain-level types for principals and sessions.
// It is pure and free of adapter concerns.

import (
	"fmt"
	"strings"
)

// Role is the authorization class of a principal.
// Keep string form for easy persistence in the vault.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCandidate Role = "candidate"
)

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "candidate":
		return RoleCandidate, nil
	default:
		return "", fmt.Errorf("invalid role: %q (valid options: admin, candidate)", s)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCandidate
}

// Principal is the authenticated identity record associated with a session.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// State is the session lifecycle state.
// Valid transitions: Unauthenticated -> Authenticating (attempt start),
// Authenticating -> Authenticated (resolver success),
// Authenticating -> Unauthenticated (resolver failure),
// Authenticated -> Unauthenticated (logout or observed 401).
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Session is the in-memory authenticated context for the running client.
// The zero value is not empty-state; use EmptySession.
type Session struct {
	Principal *Principal
	Token     string
	State     State
}

// EmptySession returns the unauthenticated session value.
func EmptySession() Session {
	return Session{State: StateUnauthenticated}
}

// Authenticated reports whether the session carries a live credential.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.State == StateAuthenticated
}

// Source identifies which credential source produced a token.
type Source string

const (
	// SourceFederated is the external identity provider (email/OAuth sign-in).
	SourceFederated Source = "federated"
	// SourceLocal is the backend's own credential store (password grant).
	SourceLocal Source = "local"
)

// CredentialAttempt describes one sign-in attempt. It is transient and
// never persisted.
type CredentialAttempt struct {
	// ID correlates log lines and metrics for a single attempt.
	ID string
	// Identifier is an email or username.
	Identifier string
	// Secret is the password for this attempt.
	Secret string
	// Seq is a monotonic sequence number; only the latest issued attempt
	// may commit a session.
	Seq uint64
}

// FederatedEligible reports whether the identifier should be tried against
// the federated provider. Usernames without an "@" are assumed local-only.
func (a CredentialAttempt) FederatedEligible() bool {
	return strings.Contains(a.Identifier, "@")
}
