package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveCmd_Use(t *testing.T) {
	assert.Equal(t, "remove [document-id]", removeCmd.Use)
}

func TestRemoveCmd_RemovesDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, seedCorpus())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"remove", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Removed doc-1")

	stats, err := ingestService.Stats(rootCmd.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Vectors)
}

func TestRemoveCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"remove", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClearCmd_WithYesFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, seedCorpus())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"clear", "--yes"})
	defer func() {
		rootCmd.SetArgs(nil)
		clearAll = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Corpus cleared")

	stats, err := ingestService.Stats(rootCmd.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
}

func TestClearCmd_AbortsWithoutConfirmation(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, seedCorpus())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetIn(strings.NewReader("n\n"))
	rootCmd.SetArgs([]string{"clear"})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Aborted")

	stats, err := ingestService.Stats(rootCmd.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}
