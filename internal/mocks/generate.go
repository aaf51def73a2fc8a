// Package mocks provides generated mock implementations for testing the
// session layer.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks
// for the vault port. Hand-written doubles for the remaining ports live in
// internal/mocks/auth.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

// Generate mock for TokenVault interface from internal/ports.
// This creates MockTokenVault with methods for all TokenVault interface methods:
// SaveToken, Token, SaveProfile, Profile, Clear
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=token_vault_mock.go github.com/tanodigital/hr-client-go/internal/ports TokenVault
