package auth

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

const tokenKeyPrefix = "auth:"

// SessionTokens remembers the bearer token of each client session.
type SessionTokens struct {
	store domain.SnapshotStore
}

func NewSessionTokens(store domain.SnapshotStore) *SessionTokens {
	return &SessionTokens{store: store}
}

func (s *SessionTokens) Save(ctx context.Context, sid, token string) error {
	if err := s.store.Set(ctx, tokenKeyPrefix+sid, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

// Load returns the stored token, or "" when the session has none.
func (s *SessionTokens) Load(ctx context.Context, sid string) (string, error) {
	token, found, err := s.store.Get(ctx, tokenKeyPrefix+sid)
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	if !found {
		return "", nil
	}
	return token, nil
}

func (s *SessionTokens) Clear(ctx context.Context, sid string) error {
	if err := s.store.Delete(ctx, tokenKeyPrefix+sid); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
