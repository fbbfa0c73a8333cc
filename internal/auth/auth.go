// Package auth signs visitors in against the auth service and keeps their token and profile
// in the session store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/avstrong/roombook/internal/identity"
	"github.com/avstrong/roombook/internal/logger"
	"github.com/avstrong/roombook/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("session expired, please login again")
)

type provider interface {
	SignUp(ctx context.Context, req *SignUpRequest) error
	VerifyEmail(ctx context.Context, email, otp string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, token string) (map[string]any, error)
}

type Manager struct {
	l        *logger.Logger
	provider provider
	store    session.Store
	validate *validator.Validate
}

func New(l *logger.Logger, provider provider, store session.Store) *Manager {
	return &Manager{l: l, provider: provider, store: store, validate: newValidator()}
}

func (m *Manager) Session(id string) *session.Session {
	return session.New(m.store, id)
}

// SignIn exchanges credentials for a token, loads the profile and stores both in a new session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, map[string]any, error) {
	token, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}

	user, err := m.provider.GetUser(ctx, token)
	if err != nil {
		return "", nil, fmt.Errorf("get signed in user: %w", err)
	}

	s := m.Session(session.NewID())

	if err = s.SetToken(ctx, token); err != nil {
		return "", nil, err //nolint:wrapcheck
	}

	if err = s.SetUserData(ctx, user); err != nil {
		return "", nil, err //nolint:wrapcheck
	}

	return s.ID(), user, nil
}

func (m *Manager) SignOut(ctx context.Context, sessionID string) error {
	return m.Session(sessionID).Logout(ctx) //nolint:wrapcheck
}

// Profile returns the live profile of the session's user and refreshes the stored copy.
func (m *Manager) Profile(ctx context.Context, sessionID string) (map[string]any, error) {
	s := m.Session(sessionID)

	token, err := s.Token(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if token == "" {
		return nil, ErrUnauthorized
	}

	user, err := m.provider.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err = s.SetUserData(ctx, user); err != nil {
		m.l.LogWarnf("Could not refresh stored user data: %v", err.Error())
	}

	return user, nil
}

// Identities lists the profiles a customer id may be resolved from, most trusted first:
// the live profile, the stored profile and the access token claims.
func (m *Manager) Identities(ctx context.Context, sessionID string) ([]map[string]any, error) {
	s := m.Session(sessionID)

	token, err := s.Token(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if token == "" {
		return nil, ErrUnauthorized
	}

	var sources []map[string]any

	live, err := m.Profile(ctx, sessionID)

	switch {
	case errors.Is(err, ErrUnauthorized):
		return nil, err
	case err != nil:
		m.l.LogWarnf("Could not load current user, falling back to stored data: %v", err.Error())
	default:
		sources = append(sources, live)
	}

	stored, err := s.UserData(ctx)
	if err != nil {
		m.l.LogWarnf("Could not read stored user data: %v", err.Error())
	} else if stored != nil {
		sources = append(sources, stored)
	}

	if claims, err := identity.ClaimsFromToken(token); err == nil {
		sources = append(sources, claims)
	}

	return sources, nil
}
