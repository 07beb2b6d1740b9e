package auth

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/minimalprod/erpctl/internal/cli/session"
)

func TestKeyringStorage(t *testing.T) {
	keyring.MockInit()

	s := NewKeyringStorage("http://localhost:8080")

	_, ok, err := s.Get(session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(session.KeyToken, "abc"))
	value, ok, err := s.Get(session.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	// Entries are scoped per server.
	_, ok, err = NewKeyringStorage("https://erp.example.com").Get(session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(session.KeyToken))
	require.NoError(t, s.Delete(session.KeyToken))
	_, ok, err = s.Get(session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyringStorage_BackendError(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))

	s := NewKeyringStorage("http://localhost:8080")

	_, _, err := s.Get(session.KeyUser)
	assert.ErrorContains(t, err, "locked")
	assert.Error(t, s.Set(session.KeyUser, "{}"))
	assert.Error(t, s.Delete(session.KeyUser))
}

func TestKeyringStorage_BacksStore(t *testing.T) {
	keyring.MockInit()
	s := NewKeyringStorage("http://localhost:8080")

	require.NoError(t, s.Set(session.KeyToken, "abc"))
	require.NoError(t, s.Set(session.KeyUser, `{"username":"admin","roles":["ADMIN"],"policies":[]}`))

	store := session.New(s, nil, nil, zerolog.Nop())
	require.NoError(t, store.Hydrate())
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "admin", store.User().Username)
}
