package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/sqlinline"
)

// MasterKeyName is the system_config row holding the shared Gemini key.
const MasterKeyName = "master_gemini_api_key"

var errUserRequired = errors.New("user id is required")

// Store reads and writes Gemini API keys. Personal keys live in
// user_api_keys, the master key in system_config. An empty value means not
// configured.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// PersonalKey returns the caller's own key, or "" when none is stored.
func (s *Store) PersonalKey(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errUserRequired
	}
	return s.scanKey(ctx, sqlinline.QSelectUserAPIKey, userID)
}

// SetPersonalKey stores the caller's key. An empty key clears it.
func (s *Store) SetPersonalKey(ctx context.Context, userID, key string) error {
	if strings.TrimSpace(userID) == "" {
		return errUserRequired
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertUserAPIKey, userID, strings.TrimSpace(key))
	return err
}

// MasterKey returns the shared key configured by an administrator.
func (s *Store) MasterKey(ctx context.Context) (string, error) {
	return s.scanKey(ctx, sqlinline.QSelectSystemConfig, MasterKeyName)
}

// SetMasterKey replaces the shared key. An empty key clears it.
func (s *Store) SetMasterKey(ctx context.Context, key string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertSystemConfig, MasterKeyName, strings.TrimSpace(key))
	return err
}

func (s *Store) scanKey(ctx context.Context, query string, arg string) (string, error) {
	row := s.sql.QueryRow(ctx, query, arg)
	var key string
	if err := row.Scan(&key); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// Mask renders a key for display without revealing it.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
