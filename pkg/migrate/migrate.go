package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where the migrate CLI reads and writes migration files.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

// embedded ships the migrations inside the api binary for boot-time runs.
//
//go:embed migrations/*.sql
var embedded embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// Run executes a goose command against the migrations in dir on disk.
// dialect is the db client dialect ("postgres" or "sqlite").
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if dir == "" {
		return errors.New("migrations dir is required")
	}
	return withGoose(db, dialect, nil, func() error {
		// RunContext prints status output to stdout (goose internal)
		if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// RunEmbedded executes a goose command against the migrations compiled into
// the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, dialect, command string) error {
	return withGoose(db, dialect, embedded, func() error {
		if err := goose.RunContext(ctx, command, db, embeddedDir); err != nil {
			return fmt.Errorf("goose %s (embedded): %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion moves the schema up or down to targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	return withGoose(db, dialect, nil, func() error {
		current, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}
		switch {
		case current < target:
			err = goose.UpToContext(ctx, db, dir, target)
		case current > target:
			err = goose.DownToContext(ctx, db, dir, target)
		}
		if err != nil {
			return fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
		}
		return nil
	})
}

// withGoose serializes goose calls; a nil fsys reads from the OS filesystem.
func withGoose(db *sql.DB, dialect string, fsys fs.FS, fn func() error) error {
	if db == nil {
		return errors.New("db is required")
	}
	name := "postgres"
	if dialect == config.DBDriverSQLite {
		name = "sqlite3"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	return fn()
}
