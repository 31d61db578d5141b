package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	books := DefaultCatalog()
	require.Len(t, books, 10)
	assert.Equal(t, "Things Fall Apart", books["1"].Title)
	assert.Equal(t, "Jane Austen", books["8"].Author)
	assert.NotNil(t, books["1"].Reviews)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	body := `{
		"ISBN001": {"author": "Robert Martin", "title": "Clean Code"},
		"ISBN002": {"author": "Kent Beck", "title": "TDD", "reviews": {"alice": "solid"}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	books, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "ISBN001", books["ISBN001"].ISBN)
	assert.Nil(t, books["ISBN001"].Reviews)
	assert.Equal(t, "solid", books["ISBN002"].Reviews["alice"])
}

func TestLoadCatalogFileErrors(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))
	_, err = LoadCatalogFile(path)
	assert.Error(t, err)
}
