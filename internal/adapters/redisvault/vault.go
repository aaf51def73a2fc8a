package redisvault

// Package redisvault provides a Redis-backed durable token vault for setups
// where several client processes must observe the same session (the
// cross-tab analog). Only durable state is shared; in-memory sessions in
// other processes self-correct on their next 401.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	"github.com/tanodigital/hr-client-go/internal/ports"
)

const (
	profileKey     = "profile"
	tokenKeyPrefix = "token:"
)

// Vault stores per-role tokens and the shared profile under a key prefix.
type Vault struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.TokenVault = (*Vault)(nil)

// NewVault creates a Redis-backed vault with the given key prefix.
func NewVault(client redis.UniversalClient, prefix string) *Vault {
	return &Vault{client: client, prefix: prefix}
}

func (v *Vault) SaveToken(ctx context.Context, role domainauth.Role, token string) error {
	if err := v.client.Set(ctx, v.prefix+tokenKeyPrefix+string(role), token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (v *Vault) Token(ctx context.Context, role domainauth.Role) (string, error) {
	token, err := v.client.Get(ctx, v.prefix+tokenKeyPrefix+string(role)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

func (v *Vault) SaveProfile(ctx context.Context, p domainauth.Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := v.client.Set(ctx, v.prefix+profileKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

func (v *Vault) Profile(ctx context.Context) (*domainauth.Principal, error) {
	data, err := v.client.Get(ctx, v.prefix+profileKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get profile: %w", err)
	}
	var p domainauth.Principal
	if unmarshalErr := json.Unmarshal([]byte(data), &p); unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", unmarshalErr)
	}
	return &p, nil
}

func (v *Vault) Clear(ctx context.Context) error {
	keys := []string{
		v.prefix + tokenKeyPrefix + string(domainauth.RoleAdmin),
		v.prefix + tokenKeyPrefix + string(domainauth.RoleCandidate),
		v.prefix + profileKey,
	}
	if err := v.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear vault: %w", err)
	}
	return nil
}
