package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "# Notes\n\nSome notes.")
	writeFile(t, dir, "sub/readme.txt", "Plain text.")
	writeFile(t, dir, "image.png", "not a document")
	writeFile(t, dir, ".git/config", "hidden")

	docs, err := NewSource().Fetch(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	titles := []string{docs[0].Title, docs[1].Title}
	assert.ElementsMatch(t, []string{"notes", "readme"}, titles)

	for _, doc := range docs {
		assert.NotEmpty(t, doc.ID)
		assert.NotEmpty(t, doc.Content)
		assert.NotEmpty(t, doc.Origin)
		assert.False(t, doc.ModifiedAt.IsZero())
	}
}

func TestFetchSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "Single file content.")

	docs, err := NewSource().Fetch(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc", docs[0].Title)
	assert.Equal(t, "Single file content.", docs[0].Content)
}

func TestFetchStableIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "v1")

	src := NewSource()
	first, err := src.Fetch(context.Background(), path)
	require.NoError(t, err)

	writeFile(t, dir, "doc.md", "v2")
	second, err := src.Fetch(context.Background(), path)
	require.NoError(t, err)

	// Same path, same ID: re-fetching replaces rather than duplicates.
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "v2", second[0].Content)
}

func TestFetchMissingPath(t *testing.T) {
	_, err := NewSource().Fetch(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}

func TestFetchCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource().Fetch(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
