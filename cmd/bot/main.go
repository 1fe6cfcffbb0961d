package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/workflow"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
)

const sweepSchedule = "0 * * * * *"

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)

	if !cfg.WhatsAppEnabled {
		log.Warn().Msg("⚠️ WHATSAPP_ENABLED is not true, bot not started")
		return
	}
	log.Info().Str("env", cfg.Env).Str("store", whatsapp.StoreDialect(cfg.WhatsAppStoreURL)).Msg("🚀 Starting sokotally-bot")

	db, err := database.NewDB(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}
	defer db.Close()

	var invoker extraction.Invoker
	if llmService, err := llm.NewService(); err != nil {
		log.Warn().Err(err).Msg("⚠️ LLM provider not configured, running offline")
	} else {
		invoker = llmService
	}

	repos := repositories.NewSet(db.GORM)
	authRepo := auth.NewRepository(db.GORM)

	reportService := services.NewReportService(repos)
	chatService := services.NewChatService(invoker, repos, reportService, authRepo, cfg.PublicBaseURL)
	confirmService := services.NewConfirmService(repos, audit.NewService(db.GORM), cfg.DedupWindow)

	client := whatsapp.NewClient(cfg.WhatsAppStoreURL)
	bot := services.NewWhatsAppService(
		chatService,
		confirmService,
		reportService,
		authRepo,
		client,
		whatsapp.NewPendingStore[services.WhatsAppPending](cfg.WhatsAppPendingTTL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect WhatsApp client")
	}
	defer client.Disconnect()

	if err := client.OnMessage(bot.HandleIncomingMessage); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start listening")
	}
	go client.StartKeepAlive(ctx)

	scheduler := workflow.NewScheduler(10 * time.Minute)
	if err := scheduler.AddJob("sweep-pending", sweepSchedule, bot.SweepPending); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to schedule pending sweep")
	}
	if err := scheduler.AddJob("daily-summary", cfg.DailySummaryCron, bot.SendDailySummaries); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to schedule daily summary")
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Info().Dur("pending_ttl", cfg.WhatsAppPendingTTL).Msg("✅ Bot listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
}
