package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/roombook/internal/session"
	"github.com/avstrong/roombook/internal/session/memory"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	store := memory.New(time.Minute)
	defer store.Stop()

	s := session.New(store, session.NewID())

	ok, err := s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := s.UserData(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, s.SetToken(ctx, "token-1"))
	require.NoError(t, s.SetUserData(ctx, map[string]any{"_id": "abc", "firstName": "Nino"}))

	ok, err = s.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err = s.UserData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", user["_id"])

	require.NoError(t, s.Logout(ctx))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()

	store := memory.New(time.Minute)
	defer store.Stop()

	a := session.New(store, "a")
	b := session.New(store, "b")

	require.NoError(t, a.SetToken(ctx, "token-a"))

	token, err := b.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCorruptUserData(t *testing.T) {
	ctx := context.Background()

	store := memory.New(time.Minute)
	defer store.Stop()

	require.NoError(t, store.Set(ctx, "s", session.KeyUserData, "{not json"))

	_, err := session.New(store, "s").UserData(ctx)
	assert.Error(t, err)
}
