package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {

	root := t.TempDir()
	nested := filepath.Join(root, "data", "db")

	assert.False(t, DirExists(nested))
	require.NoError(t, EnsureDir(nested))
	assert.True(t, DirExists(nested))
	require.NoError(t, EnsureDir(nested))

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, DirExists(file))
	assert.Error(t, EnsureDir(file))
}
