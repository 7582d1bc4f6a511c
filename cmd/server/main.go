package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finchat/invoice-validator/internal/api"
	"github.com/finchat/invoice-validator/internal/assistant"
	"github.com/finchat/invoice-validator/internal/backend"
	"github.com/finchat/invoice-validator/internal/config"
	"github.com/finchat/invoice-validator/internal/export"
	"github.com/finchat/invoice-validator/internal/notify"
	"github.com/finchat/invoice-validator/internal/repository"
	"github.com/finchat/invoice-validator/internal/service"
	"github.com/finchat/invoice-validator/internal/storage"
	"github.com/finchat/invoice-validator/internal/upload"
	"github.com/finchat/invoice-validator/pkg/database"
	"github.com/finchat/invoice-validator/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; real config still comes through viper
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

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

	logger.Info("Starting Invoice Validation Chat Service",
		zap.Int("port", cfg.Server.Port))

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

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	sessionRepo := repository.NewSessionRepository(db.DB, logger)
	messageRepo := repository.NewMessageRepository(db.DB, logger)
	resultRepo := repository.NewResultRepository(db.DB, logger)

	store := storage.NewUploadStore(cfg.Storage.UploadDir, logger)
	if err := store.ValidateConfiguration(); err != nil {
		logger.Warn("Upload storage validation failed", zap.Error(err))
	}

	var validator backend.ValidationClient
	if cfg.Validator.FixtureDir != "" {
		logger.Warn("Using fixture validation client; no backend will be called",
			zap.String("fixture_dir", cfg.Validator.FixtureDir))
		validator = backend.NewFixtureClient(cfg.Validator.FixtureDir, logger)
	} else {
		validator = backend.NewHTTPClient(cfg.Validator.BaseURL, cfg.Validator.Timeout, logger)
	}

	asst := assistant.New(assistant.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}, logger)
	if asst == nil {
		logger.Info("No OpenAI key configured; follow-up queries will use a canned reply")
	}

	notifier := notify.NewReviewerNotifier(notify.Config{
		AppID:         cfg.Lark.AppID,
		AppSecret:     cfg.Lark.AppSecret,
		ReviewerEmail: cfg.Lark.ReviewerEmail,
	}, logger)

	chatService := service.NewChatService(
		db,
		sessionRepo,
		messageRepo,
		resultRepo,
		store,
		upload.NewProber(logger),
		validator,
		asst,
		notifier,
		logger,
	)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(chatService, export.NewExcelExporter(logger), logger)
	router := api.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
