package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/lumina-backend/pkg/config"
	"github.com/angelmondragon/lumina-backend/pkg/db"
	"github.com/angelmondragon/lumina-backend/pkg/logger"
)

// MaybeRun applies pending migrations on boot when LUMINA_DB_AUTO_MIGRATE is set.
// Dev environments always auto-run.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}
	if !cfg.App.IsDev() && !cfg.DB.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running embedded goose migrations on boot")

	if err := RunEmbedded(ctx, sqlDB, client.Dialect(), "up"); err != nil {
		return err
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
