package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := &Config{}
	cfg.AddServer(Server{Alias: "local", URL: "http://localhost:8080/"})
	cfg.AddServer(Server{Alias: "prod", URL: "https://erp.example.com"})
	cfg.AddServer(Server{Alias: "local", URL: "http://127.0.0.1:8080"})
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Servers, 2)
	assert.Equal(t, "http://127.0.0.1:8080", loaded.Servers[0].URL)

	s, err := loaded.GetServerByURL("https://erp.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Alias)

	_, err = loaded.GetServerByAlias("staging")
	assert.Error(t, err)

	def, err := loaded.GetDefaultServer()
	require.NoError(t, err)
	assert.Equal(t, "local", def.Alias)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"not yaml", "servers: [", "failed to parse config file"},
		{"missing url", "servers:\n  - alias: local\n", "invalid erpctl.yaml"},
		{"bad url", "servers:\n  - alias: local\n    url: not a url\n", "invalid erpctl.yaml"},
		{"duplicate alias", "servers:\n  - alias: a\n    url: http://x\n  - alias: a\n    url: http://y\n", "duplicate server alias"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, Save(filepath.Join(root, ConfigFileName), &Config{Servers: []Server{{Alias: "local", URL: "http://localhost:8080"}}}))

	t.Chdir(nested)
	path, err := FindConfigFile()
	require.NoError(t, err)

	// macOS temp dirs live behind a symlink
	want, _ := filepath.EvalSymlinks(filepath.Join(root, ConfigFileName))
	got, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, want, got)

	cfg, err := LoadFromCurrentDir()
	require.NoError(t, err)
	assert.Len(t, cfg.Servers, 1)
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := FindConfigFile()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetDefaultServer_Empty(t *testing.T) {
	_, err := (&Config{}).GetDefaultServer()
	assert.ErrorContains(t, err, "no servers configured")
}
