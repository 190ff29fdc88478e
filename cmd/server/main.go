package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/application/service"
	"github.com/sefindigital/signing-engine/internal/config"
	"github.com/sefindigital/signing-engine/internal/infrastructure/credential"
	"github.com/sefindigital/signing-engine/internal/infrastructure/persistence/repository"
	httpserver "github.com/sefindigital/signing-engine/internal/interfaces/http"
	"github.com/sefindigital/signing-engine/pkg/database"
	"github.com/sefindigital/signing-engine/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting signing engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	recordRepo := repository.NewExecutionRecordRepository(db.DB, logger)
	processRepo := repository.NewProcessRepository(db.DB, logger)
	approverRepo := repository.NewApproverRepository(db.DB, logger)

	// Initialize application services
	verifier := credential.NewVerifier(db.DB, logger)
	clock := port.SystemClock()
	kvLogger := utils.NewKVLogger(logger)

	propagationService := service.NewPropagationService(
		taskRepo,
		documentRepo,
		recordRepo,
		processRepo,
		approverRepo,
		service.RoutingConfig{
			LegalUnit:       cfg.Routing.LegalUnit,
			OperationalUnit: cfg.Routing.OperationalUnit,
		},
		clock,
		kvLogger,
	)

	signingService := service.NewSigningService(
		taskRepo,
		documentRepo,
		verifier,
		propagationService,
		clock,
		kvLogger,
	)

	batchService := service.NewBatchService(signingService, propagationService, kvLogger)
	workloadService := service.NewWorkloadService(taskRepo, approverRepo, clock, kvLogger)

	// Initialize HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		signingService,
		batchService,
		workloadService,
		kvLogger,
	)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
