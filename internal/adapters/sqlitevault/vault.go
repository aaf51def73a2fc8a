package sqlitevault

// Package sqlitevault provides a SQLite-backed durable token vault. It is
// the local-storage analog: a single file that survives client restarts.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domainauth "github.com/tanodigital/hr-client-go/internal/domain/auth"
	"github.com/tanodigital/hr-client-go/internal/ports"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

const (
	keyProfile     = "profile"
	tokenKeyPrefix = "token:"
)

// Vault stores per-role tokens and the shared profile in a small key-value
// table. Writes overwrite unconditionally; there is no merge.
type Vault struct {
	db *sql.DB
}

var _ ports.TokenVault = (*Vault)(nil)

// Open creates or opens the vault file at path, creating parent directories
// as needed.
func Open(path string) (*Vault, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create vault dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	// Single connection: the vault is tiny and SQLite handles cross-process
	// locking at the file level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vault (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	)`); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, errors.Join(fmt.Errorf("init vault schema: %w", err), cerr)
		}
		return nil, fmt.Errorf("init vault schema: %w", err)
	}

	return &Vault{db: db}, nil
}

// Close releases the underlying database handle.
func (v *Vault) Close() error {
	return v.db.Close()
}

func (v *Vault) set(ctx context.Context, key, value string) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO vault (k, v) VALUES (?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	if err != nil {
		return fmt.Errorf("vault write %q: %w", key, err)
	}
	return nil
}

func (v *Vault) get(ctx context.Context, key string) (string, error) {
	var value string
	err := v.db.QueryRowContext(ctx, `SELECT v FROM vault WHERE k = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("vault read %q: %w", key, err)
	}
	return value, nil
}

func (v *Vault) SaveToken(ctx context.Context, role domainauth.Role, token string) error {
	return v.set(ctx, tokenKeyPrefix+string(role), token)
}

func (v *Vault) Token(ctx context.Context, role domainauth.Role) (string, error) {
	return v.get(ctx, tokenKeyPrefix+string(role))
}

func (v *Vault) SaveProfile(ctx context.Context, p domainauth.Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return v.set(ctx, keyProfile, string(data))
}

func (v *Vault) Profile(ctx context.Context) (*domainauth.Principal, error) {
	data, err := v.get(ctx, keyProfile)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	var p domainauth.Principal
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

func (v *Vault) Clear(ctx context.Context) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM vault WHERE k IN (?, ?, ?)`,
		tokenKeyPrefix+string(domainauth.RoleAdmin),
		tokenKeyPrefix+string(domainauth.RoleCandidate),
		keyProfile)
	if err != nil {
		return fmt.Errorf("vault clear: %w", err)
	}
	return nil
}
