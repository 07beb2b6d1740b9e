package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalprod/erpctl/internal/cli/config"
	"github.com/minimalprod/erpctl/internal/cli/userconfig"
)

func TestUseCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, config.Save(filepath.Join(dir, config.ConfigFileName), &config.Config{Servers: []config.Server{
		{Alias: "local", URL: "http://localhost:8080"},
		{Alias: "prod", URL: "https://erp.example.com"},
	}}))

	var out bytes.Buffer
	require.NoError(t, runUse(&out, "prod"))
	assert.Contains(t, out.String(), "Selected server: prod (https://erp.example.com)")

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", selected)

	require.NoError(t, runUse(&out, "http://localhost:8080"))
	selected, err = userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", selected)

	assert.Error(t, runUse(&out, "staging"))
}

func TestUseCommand_NoConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	err := runUse(&bytes.Buffer{}, "prod")
	assert.ErrorContains(t, err, "erpctl init")
}
