package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
)

// Store persists one opaque access token per (user, provider) pair.
// Tokens are written by the authorization handshake (outside this
// engine), read before every remote call and deleted on disconnect or
// on an authorization-failure response.
type Store struct {
	kv kvstore.Store
}

// NewStore creates a credential Store over the given key-value backend.
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Get returns the stored token. A missing token is reported as
// KindUnauthenticated so callers fail fast before dispatching remotely.
func (s *Store) Get(ctx context.Context, userID, provider string) (string, error) {
	token, err := s.kv.Get(ctx, config.StoreKey.CredentialKey(userID, provider))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return "", apperror.New(apperror.KindUnauthenticated, "credential.Get", nil)
		}
		return "", fmt.Errorf("get credential: %w", err)
	}
	return token, nil
}

// Set stores a token, replacing any previous one.
func (s *Store) Set(ctx context.Context, userID, provider, token string) error {
	if err := s.kv.Set(ctx, config.StoreKey.CredentialKey(userID, provider), token); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

// Clear removes the token. Clearing an absent token is a no-op, which
// keeps disconnect idempotent.
func (s *Store) Clear(ctx context.Context, userID, provider string) error {
	if err := s.kv.Delete(ctx, config.StoreKey.CredentialKey(userID, provider)); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// ConnectedUsers lists user IDs that currently hold a credential for the
// provider. Used by the scheduler to pick sync targets.
func (s *Store) ConnectedUsers(ctx context.Context, provider string) ([]string, error) {
	prefix := config.StoreKey.CredentialPrefix(provider)
	entries, err := s.kv.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	users := make([]string, 0, len(entries))
	for key := range entries {
		users = append(users, strings.TrimPrefix(key, prefix))
	}
	return users, nil
}
