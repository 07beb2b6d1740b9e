package serverselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalprod/erpctl/internal/cli/config"
	"github.com/minimalprod/erpctl/internal/cli/userconfig"
)

func twoServers() *config.Config {
	return &config.Config{Servers: []config.Server{
		{Alias: "local", URL: "http://localhost:8080"},
		{Alias: "prod", URL: "https://erp.example.com"},
	}}
}

func stubPrompt(t *testing.T, fn func(*config.Config) (*config.Server, error)) {
	old := prompt
	prompt = fn
	t.Cleanup(func() { prompt = old })
}

func TestResolveServer_Alias(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := ResolveServer(twoServers(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", s.URL)

	_, err = ResolveServer(twoServers(), "staging")
	assert.Error(t, err)
}

func TestResolveServer_Selected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("https://erp.example.com"))
	stubPrompt(t, func(*config.Config) (*config.Server, error) {
		t.Fatal("prompt should not run")
		return nil, nil
	})

	s, err := ResolveServer(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Alias)
}

func TestResolveServer_StaleSelectionPrompts(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("https://gone.example.com"))

	cfg := twoServers()
	stubPrompt(t, func(c *config.Config) (*config.Server, error) {
		return &c.Servers[0], nil
	})

	s, err := ResolveServer(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "local", s.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", selected)
}

func TestResolveServer_SingleServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{Servers: []config.Server{{Alias: "only", URL: "http://only:8080"}}}
	s, err := ResolveServer(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "only", s.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://only:8080", selected)
}

func TestResolveServer_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stubPrompt(t, func(*config.Config) (*config.Server, error) {
		return nil, errors.New("server selection cancelled")
	})

	_, err := ResolveServer(twoServers(), "")
	assert.ErrorContains(t, err, "cancelled")
}

func TestGetServerByURLOrAlias(t *testing.T) {
	cfg := twoServers()

	s, err := GetServerByURLOrAlias(cfg, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "local", s.Alias)

	s, err = GetServerByURLOrAlias(cfg, "prod")
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", s.URL)

	_, err = GetServerByURLOrAlias(cfg, "nope")
	assert.Error(t, err)
}
