package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinters(t *testing.T) {
	var buf bytes.Buffer

	Success(&buf, "Logged in as %s", "admin")
	Warn(&buf, "server unreachable")
	Error(&buf, "Invalid credentials")
	Field(&buf, "Roles", "ADMIN")
	Muted(&buf, "no session")

	out := buf.String()
	assert.Contains(t, out, "✓ Logged in as admin")
	assert.Contains(t, out, "⚠ server unreachable")
	assert.Contains(t, out, "Invalid credentials")
	assert.Contains(t, out, "Roles:")
	assert.Contains(t, out, "ADMIN")
	assert.Contains(t, out, "no session")
}
