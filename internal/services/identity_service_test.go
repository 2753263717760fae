package services

import (
	"context"
	"testing"
	"time"

	"signage_server/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.user(t, "alice")
	assert.NotEmpty(t, user.Token)
	assert.NotEqual(t, "secret123", user.Password)

	authed, err := env.identity.Authenticate(ctx, user.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	loggedIn, err := env.identity.Login(ctx, &LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, user.Token, loggedIn.Token)

	_, err = env.identity.Authenticate(ctx, user.Token)
	requireKind(t, err, apperr.KindUnauthorized)

	require.NoError(t, env.identity.Logout(ctx, loggedIn))
	_, err = env.identity.Authenticate(ctx, loggedIn.Token)
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice")

	_, err := env.identity.Register(ctx, &RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret123"})
	requireKind(t, err, apperr.KindConflict)

	_, err = env.identity.Register(ctx, &RegisterRequest{Username: "bob", Email: "not-an-email", Password: "secret123"})
	requireKind(t, err, apperr.KindValidation)

	_, err = env.identity.Register(ctx, &RegisterRequest{Username: "bob", Email: "b@example.com", Password: "123"})
	requireKind(t, err, apperr.KindValidation)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice")

	_, err := env.identity.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong-password"})
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = env.identity.Login(ctx, &LoginRequest{Username: "nobody", Password: "secret123"})
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = env.identity.Authenticate(ctx, "")
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestTokenExpires(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "alice")

	env.identity.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := env.identity.Authenticate(context.Background(), user.Token)
	requireKind(t, err, apperr.KindUnauthorized)
}
