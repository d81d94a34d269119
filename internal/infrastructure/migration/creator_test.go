package migration

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add estimate revisions", "snapshot table for accepted estimates")
		require.NoError(t, err)

		assert.Equal(t, "add_estimate_revisions", mf.Name)
		assert.Regexp(t, regexp.MustCompile(`^\d{14}$`), mf.Version)
		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: add_estimate_revisions")
		assert.Contains(t, string(up), "snapshot table for accepted estimates")
		assert.Contains(t, string(up), "UP migration")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback for snapshot table for accepted estimates")
		assert.Contains(t, string(down), "DOWN migration")
	})

	t.Run("creates the migrations directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db", "migrations")

		mf, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)

		assert.DirExists(t, dir)
		assert.FileExists(t, mf.UpPath)
	})

	t.Run("prefixes files with the version", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add price books", "")
		require.NoError(t, err)

		assert.Equal(t, mf.Version+"_add_price_books.up.sql", filepath.Base(mf.UpPath))
		assert.Equal(t, mf.Version+"_add_price_books.down.sql", filepath.Base(mf.DownPath))
	})
}

func TestListMigrations(t *testing.T) {
	writeFile := func(t *testing.T, dir, name string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0o644))
	}

	t.Run("lists each pair once in version order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "20240101000000_add_estimates.up.sql")
		writeFile(t, dir, "20240101000000_add_estimates.down.sql")
		writeFile(t, dir, "20240201000000_add_price_books.up.sql")
		writeFile(t, dir, "20240201000000_add_price_books.down.sql")

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"20240101000000_add_estimates",
			"20240201000000_add_price_books",
		}, migrations)
	})

	t.Run("ignores files that are not up migrations", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "20240101000000_add_estimates.up.sql")
		writeFile(t, dir, "20240101000000_add_estimates.down.sql")
		writeFile(t, dir, "README.md")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"20240101000000_add_estimates"}, migrations)
	})

	t.Run("returns empty for a missing directory", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"add estimate lines", "add_estimate_lines"},
		{"Add-Estimate-Lines", "add_estimate_lines"},
		{"ADD_ESTIMATE_LINES", "add_estimate_lines"},
		{"add__estimate__lines", "add_estimate_lines"},
		{"revision 2", "revision_2"},
		{"   padded   ", "padded"},
		{"drop!@#$table", "droptable"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run("name "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.input))
		})
	}
}
