package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFileName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000001_create_polls.up.sql", "000001_create_polls.down.sql", "000003_create_votes.up.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "create_polls.up.sql"), 0o755))

	name, err := migrationFileName(dir, "create_polls.up")
	require.NoError(t, err)
	assert.Equal(t, "000001_create_polls.up.sql", name)

	name, err = migrationFileName(dir, "create_polls.down")
	require.NoError(t, err)
	assert.Equal(t, "000001_create_polls.down.sql", name)

	_, err = migrationFileName(dir, "votes.up")
	assert.Error(t, err)
}

func TestShippedMigrationsResolve(t *testing.T) {
	dir := filepath.Join("..", "..", filepath.FromSlash(migrationsDir))
	for _, name := range []string{"create_polls.up", "create_voters.up", "create_votes.up", "create_poll_results.up"} {
		_, err := migrationFileContent(dir, name)
		assert.NoError(t, err, name)
	}
}
