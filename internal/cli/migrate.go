// internal/cli/migrate.go
package cli

import (
	"context"
	"log/slog"

	"go_4_learn_progress/internal/config"
	"go_4_learn_progress/internal/repository"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repository.AutoMigrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
}

// openDB はDBに接続し、クローズ関数と共に返します
func openDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
			return
		}
		if err := sqlDB.Close(); err != nil {
			logger.Error("Error closing database connection", slog.Any("error", err))
			return
		}
		logger.Info("Database connection closed.")
	}
	return db, closeDB, nil
}

func migrateIfEnabled(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}
	logger.Info("Running auto migration")
	return repository.AutoMigrate(ctx, db)
}
