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

func executeCatalog(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCatalogDefault(t *testing.T) {
	out, err := executeCatalog(t, "text")
	require.NoError(t, err)

	assert.Contains(t, out, "t1   Uni T-shirt")
	assert.Contains(t, out, "JPY 3,500")
	assert.Contains(t, out, "Best seller")
	assert.Contains(t, out, "a4   Strawberry pouch")
}

func TestCatalogCategoryFilter(t *testing.T) {
	out, err := executeCatalog(t, "json", "--category", "accessory")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CatalogResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "JPY", resp.Data.Currency)
	require.Len(t, resp.Data.Categories, 1)
	require.Len(t, resp.Data.Items, 4)
	for _, it := range resp.Data.Items {
		assert.Equal(t, "accessory", it.Category)
	}
}

func TestCatalogUnknownCategory(t *testing.T) {
	_, err := executeCatalog(t, "text", "--category", "hats")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown category: hats")
}

func TestCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
currency: "USD"
categories: drinks: name: "Drinks"
items: cola: {name: "Cola", category: "drinks", price: 250}
`), 0o644))

	out, err := executeCatalog(t, "text", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Drinks\n")
	assert.Contains(t, out, "cola")
	assert.Contains(t, out, "USD 2.50")
}
