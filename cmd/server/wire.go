// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/app"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/identity"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/jobs"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/middleware"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/elasticsearch"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/logger"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/metrics"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/webhook"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,
		metrics.NewCollector,
		elasticsearch.NewClient,
		middleware.NewRateLimiter,

		// Identity and users
		identity.NewTokenVerifier,
		user.NewGORMRepository,
		user.NewService,
		provideUserLookup,
		identity.NewResolver,
		user.NewHandler,
		webhook.NewHandler,

		// Tasks
		task.NewGORMRepository,
		task.NewIndexer,
		task.NewService,
		task.NewHandler,
		provideOrphanSweeper,
		jobs.NewOrphanSweepJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
