package containers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSchema(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "schema"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "schema", "schema.sql"), []byte("SELECT 1;\n"), 0o600))

	nested := filepath.Join(root, "cmd", "seed")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	for _, dir := range []string{root, filepath.Join(root, "schema"), nested} {
		path, err := findSchema(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "schema", "schema.sql"), path)
	}
}

func TestFindSchema_missing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example\n"), 0o600))

	_, err := findSchema(root)
	assert.Error(t, err)
}

func TestSchemaPath_module(t *testing.T) {
	path, err := schemaPath()
	require.NoError(t, err)
	assert.FileExists(t, path)
}
