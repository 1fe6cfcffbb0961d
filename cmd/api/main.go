package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/workflow"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/handlers"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/sokotally-be/cmd/api/docs"
)

const purgeSchedule = "0 0 3 * * *"

// @title SokoTally API
// @version 1.0
// @description Chat-first bookkeeping for small shops: natural-language sales, stock and reports.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("🚀 Starting sokotally-api")

	db, err := database.NewDB(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}
	defer db.Close()

	// LLM is optional: without a provider every message runs on the offline heuristics
	var invoker extraction.Invoker
	if llmService, err := llm.NewService(); err != nil {
		log.Warn().Err(err).Msg("⚠️ LLM provider not configured, running offline")
	} else {
		invoker = llmService
	}

	repos := repositories.NewSet(db.GORM)
	auditService := audit.NewService(db.GORM)

	authRepo := auth.NewRepository(db.GORM)
	authService := auth.NewService(authRepo, cfg.JWTSecret)

	reportService := services.NewReportService(repos)
	chatService := services.NewChatService(invoker, repos, reportService, authRepo, cfg.PublicBaseURL)
	confirmService := services.NewConfirmService(repos, auditService, cfg.DedupWindow)
	transactionService := services.NewTransactionService(repos, auditService)
	inventoryService := services.NewInventoryService(repos)
	usageService := services.NewUsageService(repos)

	scheduler := workflow.NewScheduler(5 * time.Minute)
	err = scheduler.AddJob("purge-ai-usage", purgeSchedule, func(ctx context.Context) error {
		removed, err := usageService.Purge(ctx, cfg.AIUsageRetentionDays)
		if err != nil {
			return err
		}
		log.Info().Int64("removed", removed).Int("retention_days", cfg.AIUsageRetentionDays).Msg("🧹 AI usage purged")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to schedule AI usage purge")
	}
	scheduler.Start()
	defer scheduler.Stop()

	ledger := &handlers.Handlers{
		Chat:         handlers.NewChatHandler(chatService, confirmService),
		Transactions: handlers.NewTransactionHandler(transactionService, export.NewService()),
		Inventory:    handlers.NewInventoryHandler(inventoryService),
		Reports:      handlers.NewReportHandler(reportService, usageService),
		Health:       handlers.NewHealthHandler(db),
	}

	app := fiber.New(fiber.Config{
		AppName:   "SokoTally API",
		BodyLimit: 1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth.NewHandler(authService).RegisterRoutes(app)
	ledger.RegisterRoutes(app, auth.AuthMiddleware(authService))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("❌ Server stopped")
		}
	}()

	log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("❌ Graceful shutdown failed")
	}
	log.Info().Msg("Goodbye 👋")
}
