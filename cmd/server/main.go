// File: cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/crypto"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/database"
	platformElasticsearch "github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/elasticsearch"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/logger"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/metrics"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"go.uber.org/zap"
)

const usage = `usage: server [command]

commands:
  serve           run the HTTP API (default)
  migrate         apply pending database migrations
  reindex-tasks   copy every task into the search index
  gen-secrets     print fresh WEBHOOK_SIGNING_SECRET and IDENTITY_JWT_SECRET values
`

func main() {
	cmd := "serve"
	args := []string{}
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "serve":
		startServer()
	case "migrate":
		runMigrate()
	case "reindex-tasks":
		reindexCmd := flag.NewFlagSet("reindex-tasks", flag.ExitOnError)
		batchSize := reindexCmd.Int("batch-size", 500, "Number of tasks sent per bulk request")
		_ = reindexCmd.Parse(args)
		runReindex(*batchSize)
	case "gen-secrets":
		if err := printSecrets(); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	appLogger := server.Logger()
	if server.ESClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := ensureTasksIndex(ctx, server.ESClient, appLogger); err != nil {
			appLogger.Error("Failed to create Elasticsearch tasks index; search mirroring will fail until it exists.", zap.Error(err))
		}
		cancel()
	} else {
		appLogger.Info("Elasticsearch not configured, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received signal, shutting down server...", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server shutdown complete.")
}

func runMigrate() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for migrate: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for migrate: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := database.RunMigrations(cfg.MigrationURL(), appLogger); err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
}

// runReindex rebuilds the search index from the database.
func runReindex(batchSize int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for reindex: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for reindex: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database for reindex", zap.Error(err))
	}
	defer database.CloseGORMDB(db, appLogger)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Elasticsearch client for reindex", zap.Error(err))
	}
	if esClient == nil {
		appLogger.Fatal("ELASTICSEARCH_URL is not set; nothing to reindex into.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureTasksIndex(ctx, esClient, appLogger); err != nil {
		appLogger.Fatal("Failed to create or verify tasks index", zap.Error(err))
	}

	service := task.NewService(task.NewGORMRepository(db), task.NewIndexer(esClient, appLogger), metrics.NewCollector(), cfg, appLogger)
	indexed, err := service.Reindex(ctx, batchSize)
	if err != nil {
		appLogger.Fatal("Task reindex failed", zap.Int("indexed", indexed), zap.Error(err))
	}
	appLogger.Info("Task reindex completed.", zap.Int("indexed", indexed))
}

func ensureTasksIndex(ctx context.Context, client *platformElasticsearch.ESClientWrapper, appLogger *zap.Logger) error {
	mapping, err := platformElasticsearch.TasksMapping()
	if err != nil {
		return err
	}
	return platformElasticsearch.EnsureIndex(ctx, client, platformElasticsearch.TasksIndexName, mapping, appLogger)
}

// printSecrets emits .env lines for local development.
func printSecrets() error {
	signing, err := crypto.GenerateSigningSecret(32)
	if err != nil {
		return fmt.Errorf("generate signing secret: %w", err)
	}
	jwtSecret, err := crypto.GenerateSecureRandomString(48)
	if err != nil {
		return fmt.Errorf("generate jwt secret: %w", err)
	}
	fmt.Printf("WEBHOOK_SIGNING_SECRET=%s\nIDENTITY_JWT_SECRET=%s\n", signing, jwtSecret)
	return nil
}
