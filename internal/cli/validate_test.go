package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMenu = `
categories: x: name: "X"
items: {
	i: {name: "I", category: "x", price: 1}
	j: {name: "J", category: "x", price: 2}
}
`

func writeMenu(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := executeValidate(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestValidateValid(t *testing.T) {
	dir := t.TempDir()
	a := writeMenu(t, dir, "a.cue", validMenu)
	b := writeMenu(t, dir, "b.cue", `
categories: y: name: "Y"
items: k: {name: "K", category: "y", price: 3}
`)

	out, err := executeValidate(t, "text", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 catalog(s) valid, 3 item(s)")
}

func TestValidateInvalid(t *testing.T) {
	dir := t.TempDir()
	good := writeMenu(t, dir, "good.cue", validMenu)
	bad := writeMenu(t, dir, "bad.cue", `
categories: x: name: "X"
items: i: {name: "I", category: "x", price: -5}
`)

	out, err := executeValidate(t, "text", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, bad)
	assert.NotContains(t, out, good)
}

func TestValidateInvalidJSON(t *testing.T) {
	bad := writeMenu(t, t.TempDir(), "bad.cue", `items: {`)

	out, err := executeValidate(t, "json", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, bad, resp.Data.Errors[0].File)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_INVALID_CATALOG", resp.Error.Code)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := executeValidate(t, "text", "/nonexistent/menu.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
