package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandScanArgs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"front.jpg", "back.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	single := filepath.Join(dir, "front.jpg")

	t.Run("plain file passes through", func(t *testing.T) {
		t.Parallel()
		files, err := expandScanArgs([]string{single})
		require.NoError(t, err)
		assert.Equal(t, []string{single}, files)
	})

	t.Run("directory expands to supported files", func(t *testing.T) {
		t.Parallel()
		files, err := expandScanArgs([]string{dir})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "front.jpg"),
			filepath.Join(dir, "back.png"),
		}, files)
	})

	t.Run("unsupported file kept for the extractor to reject", func(t *testing.T) {
		t.Parallel()
		txt := filepath.Join(dir, "notes.txt")
		files, err := expandScanArgs([]string{txt})
		require.NoError(t, err)
		assert.Equal(t, []string{txt}, files)
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		_, err := expandScanArgs([]string{filepath.Join(dir, "gone.jpg")})
		assert.Error(t, err)
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		_, err := expandScanArgs([]string{filepath.Join(dir, "nested")})
		assert.Error(t, err)
	})
}
