// Package session keeps per-visitor auth state behind a small Store capability, so the
// backing storage can be swapped for an in-memory one in tests.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	KeyAccessToken = "access_token"
	KeyUserData    = "userData"
)

type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
}

type Session struct {
	id    string
	store Store
}

func New(store Store, id string) *Session {
	return &Session{id: id, store: store}
}

func NewID() string {
	return uuid.NewString()
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, s.id, KeyAccessToken, token); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}

	return nil
}

// Token returns the access token, or "" when the session has none.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.Get(ctx, s.id, KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("get access token: %w", err)
	}

	return token, nil
}

func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)

	return token != "", err
}

func (s *Session) SetUserData(ctx context.Context, user map[string]any) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user data: %w", err)
	}

	if err = s.store.Set(ctx, s.id, KeyUserData, string(raw)); err != nil {
		return fmt.Errorf("store user data: %w", err)
	}

	return nil
}

// UserData returns the stored profile, or nil when none was stored.
func (s *Session) UserData(ctx context.Context) (map[string]any, error) {
	raw, ok, err := s.store.Get(ctx, s.id, KeyUserData)
	if err != nil {
		return nil, fmt.Errorf("get user data: %w", err)
	}

	if !ok || raw == "" {
		return nil, nil //nolint:nilnil
	}

	var user map[string]any

	if err = json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode user data: %w", err)
	}

	return user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.id, KeyAccessToken, KeyUserData); err != nil {
		return fmt.Errorf("drop session keys: %w", err)
	}

	return nil
}
