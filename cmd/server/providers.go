// File: cmd/server/providers.go
package main

import (
	"fmt"
	"log"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/identity"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/jobs"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/database"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens the connection pool, applying migrations first when
// DB_AUTO_MIGRATE is set. The cleanup closes the pool and flushes the logger.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.DBAutoMigrate {
		if err := database.RunMigrations(cfg.MigrationURL(), logger); err != nil {
			return nil, nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db, logger)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return db, cleanup, nil
}

func provideUserLookup(users user.Service) identity.UserLookup {
	return users
}

func provideOrphanSweeper(tasks task.Service) jobs.OrphanSweeper {
	return tasks
}
