package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectUpFiles_SortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"002_create_admin_users.up.sql",
		"001_create_contacts.up.sql",
		"001_create_contacts.down.sql",
		"000_consolidated.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.up.sql"), 0o755))

	files, err := collectUpFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_contacts.up.sql", "002_create_admin_users.up.sql"}, files)
}

func TestCollectUpFiles_MissingDir(t *testing.T) {
	_, err := collectUpFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCollectUpFiles_RepoMigrations(t *testing.T) {
	files, err := collectUpFiles("../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_create_contacts.up.sql", files[0])
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"up", "reset", "fresh", "create-admin", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "seed/contacts.yaml", seed.Flags().Lookup("file").DefValue)

	admin, _, err := root.Find([]string{"create-admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Flags().Lookup("role").DefValue)
}
