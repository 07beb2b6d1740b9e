package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalprod/erpctl/internal/cli/router"
	"github.com/minimalprod/erpctl/internal/cli/session"
)

type fakeCredentials struct {
	username, password string
	err                error
	asked              int
}

func (f *fakeCredentials) Username() (string, error) {
	f.asked++
	return f.username, f.err
}

func (f *fakeCredentials) Password() (string, error) {
	f.asked++
	return f.password, f.err
}

func TestResolveCredentials(t *testing.T) {
	t.Run("flags win", func(t *testing.T) {
		t.Setenv("ERPCTL_USERNAME", "env-user")
		reader := &fakeCredentials{}

		u, p, err := resolveCredentials("admin", "secret", reader)
		require.NoError(t, err)
		assert.Equal(t, "admin", u)
		assert.Equal(t, "secret", p)
		assert.Zero(t, reader.asked)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ERPCTL_USERNAME", "env-user")
		t.Setenv("ERPCTL_PASSWORD", "env-pass")

		u, p, err := resolveCredentials("", "", &fakeCredentials{})
		require.NoError(t, err)
		assert.Equal(t, "env-user", u)
		assert.Equal(t, "env-pass", p)
	})

	t.Run("prompt", func(t *testing.T) {
		t.Setenv("ERPCTL_USERNAME", "")
		t.Setenv("ERPCTL_PASSWORD", "")
		reader := &fakeCredentials{username: "ops", password: "ops123"}

		u, p, err := resolveCredentials("", "", reader)
		require.NoError(t, err)
		assert.Equal(t, "ops", u)
		assert.Equal(t, "ops123", p)
		assert.Equal(t, 2, reader.asked)
	})

	t.Run("non-interactive", func(t *testing.T) {
		t.Setenv("ERPCTL_PASSWORD", "")
		reader := &fakeCredentials{err: errors.New("password is required in non-interactive mode")}

		_, _, err := resolveCredentials("admin", "", reader)
		assert.ErrorContains(t, err, "non-interactive")
	})
}

func TestLoginCommand_Success(t *testing.T) {
	a, _, storage := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, router.RouteLogin))

	var out bytes.Buffer
	require.NoError(t, runLogin(ctx, a, &out, "admin", "admin123"))

	assert.Contains(t, out.String(), "Login successful!")
	assert.Contains(t, out.String(), "ADMIN")
	assert.True(t, a.Session.IsAuthenticated())
	assert.Equal(t, router.RouteLanding, a.Router.Current())

	token, ok, err := storage.Get(session.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	a, _, storage := newTestApp(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := runLogin(ctx, a, &out, "admin", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)

	assert.Contains(t, out.String(), "Invalid credentials")
	assert.False(t, a.Session.IsAuthenticated())

	_, ok, err := storage.Get(session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutCommand(t *testing.T) {
	a, erpServer, storage := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.Session.Login(ctx, "admin", "admin123"))

	var out bytes.Buffer
	require.NoError(t, runLogout(ctx, a, &out))

	assert.Contains(t, out.String(), "Logged out")
	assert.False(t, a.Session.IsAuthenticated())
	// Logout lands on "/", which the guard turns into the login route.
	assert.Equal(t, router.RouteLogin, a.Router.Current())
	assert.False(t, erpServer.authorized(bearer("tok-1")))

	_, ok, err := storage.Get(session.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	out.Reset()
	require.NoError(t, runLogout(ctx, a, &out))
	assert.Contains(t, out.String(), "Not logged in")
}
