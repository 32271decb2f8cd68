package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewsletterMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_newsletter_subscribers.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no newsletter migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS newsletter_subscribers",
		"CREATE UNIQUE INDEX IF NOT EXISTS newsletter_subscribers_email_key",
		"DROP TABLE IF EXISTS newsletter_subscribers",
	} {
		require.Contains(t, content, sub)
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Subscriber Source!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_subscriber_source.sql"), path)
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirRejectsNonPortableSQL(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- uses serial ids\nCREATE TABLE t (id BIGSERIAL PRIMARY KEY);\n-- +goose Down\nDROP TABLE t;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_t.sql"), []byte(body), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bigserial")
}

func TestCreateSQLMigrationRefusesDuplicates(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "seed", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301090000_seed.sql"), path)

	_, err = createSQLMigration(dir, "seed", now)
	require.Error(t, err)

	_, err = createSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestRunUpOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Run(context.Background(), sqlDB, config.DBDriverSQLite, "migrations", "up"))

	var count int64
	require.NoError(t, conn.Table("newsletter_subscribers").Count(&count).Error)
	require.Zero(t, count)
}

func TestRunEmbeddedOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_embedded?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RunEmbedded(context.Background(), sqlDB, config.DBDriverSQLite, "up"))
	require.True(t, conn.Migrator().HasTable("newsletter_subscribers"))
}
