package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/marketplace/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add issuers table", "add_issuers_table"},
		{"Add-Issuers-Table", "add_issuers_table"},
		{"add__issuers", "add_issuers"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers the first migration 000001", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "migrations")

		mf, err := CreateMigration(dir, "add issuers", "Issuers table")
		require.NoError(t, err)

		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_add_issuers.up.sql"), mf.UpPath)
		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Description: Issuers table")
		assert.FileExists(t, mf.DownPath)
	})

	t.Run("continues after the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_old.up.sql"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_old.down.sql"), nil, 0o644))

		mf, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists sorted up migrations", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_b.up.sql":   {},
			"000002_b.down.sql": {},
			"000001_a.up.sql":   {},
			"000001_a.down.sql": {},
			"README.md":         {},
			"sub/000003.up.sql": {},
		}

		names, err := ListMigrations(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a", "000002_b"}, names)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("embedded migrations are paired", func(t *testing.T) {
		names, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, names)
		for _, name := range names {
			_, err := migrations.FS.Open(name + ".down.sql")
			assert.NoError(t, err, name)
		}
	})
}
