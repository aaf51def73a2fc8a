package sqlitevault_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanodigital/hr-client-go/internal/adapters/sqlitevault"
	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	"github.com/tanodigital/hr-client-go/internal/testutil"
)

func TestVault_TokenRoundTrip(t *testing.T) {
	vault := testutil.OpenTestVault(t)
	ctx := context.Background()

	require.NoError(t, vault.SaveToken(ctx, domainauth.RoleAdmin, "tok-1"))

	token, err := vault.Token(ctx, domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// The other slot is untouched.
	other, err := vault.Token(ctx, domainauth.RoleCandidate)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestVault_Token_AbsentIsEmpty(t *testing.T) {
	vault := testutil.OpenTestVault(t)

	token, err := vault.Token(context.Background(), domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestVault_SaveToken_Overwrites(t *testing.T) {
	vault := testutil.OpenTestVault(t)
	ctx := context.Background()

	require.NoError(t, vault.SaveToken(ctx, domainauth.RoleCandidate, "tok-old"))
	require.NoError(t, vault.SaveToken(ctx, domainauth.RoleCandidate, "tok-new"))

	token, err := vault.Token(ctx, domainauth.RoleCandidate)
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
}

func TestVault_ProfileRoundTrip(t *testing.T) {
	vault := testutil.OpenTestVault(t)
	ctx := context.Background()

	want := domainauth.Principal{
		ID:          "u-1",
		DisplayName: "Jane Doe",
		Email:       "jane@example.com",
		Role:        domainauth.RoleCandidate,
	}
	require.NoError(t, vault.SaveProfile(ctx, want))

	got, err := vault.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestVault_Profile_AbsentIsNil(t *testing.T) {
	vault := testutil.OpenTestVault(t)

	got, err := vault.Profile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVault_Clear(t *testing.T) {
	vault := testutil.OpenTestVault(t)
	ctx := context.Background()

	require.NoError(t, vault.SaveToken(ctx, domainauth.RoleAdmin, "tok-admin"))
	require.NoError(t, vault.SaveToken(ctx, domainauth.RoleCandidate, "tok-cand"))
	require.NoError(t, vault.SaveProfile(ctx, domainauth.Principal{ID: "u-1"}))

	require.NoError(t, vault.Clear(ctx))

	for _, role := range []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleCandidate} {
		token, err := vault.Token(ctx, role)
		require.NoError(t, err)
		assert.Empty(t, token)
	}
	profile, err := vault.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "vault.db")

	vault, err := sqlitevault.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vault.Close() })

	require.NoError(t, vault.SaveToken(context.Background(), domainauth.RoleAdmin, "tok-1"))
}

func TestVault_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")
	ctx := context.Background()

	first, err := sqlitevault.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveToken(ctx, domainauth.RoleAdmin, "tok-1"))
	require.NoError(t, first.Close())

	second, err := sqlitevault.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	token, err := second.Token(ctx, domainauth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}
