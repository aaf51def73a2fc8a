package testutil

// Package testutil provides shared helpers for tests that need real
// infrastructure (Redis) or a scratch vault file.

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tanodigital/hr-client-go/internal/adapters/sqlitevault"
)

// TestingTB is the subset of testing.TB used by these helpers.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skipf(format string, args ...any)
	Logf(format string, args ...any)
	TempDir() string
}

// SetupTestRedis creates a Redis client for testing.
// Tests are skipped when Redis is not reachable.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client after ping error: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("close redis client: %v", err)
		}
	})
	return client
}

// UniqueKeyPrefix returns a per-test Redis key prefix so parallel tests
// never collide.
func UniqueKeyPrefix() string {
	return "hrclient-test:" + uuid.NewString() + ":"
}

// OpenTestVault opens a scratch SQLite vault in a temp directory.
func OpenTestVault(t TestingTB) *sqlitevault.Vault {
	t.Helper()

	vault, err := sqlitevault.Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("open test vault: %v", err)
	}
	t.Cleanup(func() {
		if err := vault.Close(); err != nil {
			t.Logf("close test vault: %v", err)
		}
	})
	return vault
}
