package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"pantry-planner/internal/api"
	"pantry-planner/internal/auth"
	"pantry-planner/internal/backup"
	"pantry-planner/internal/clipper"
	"pantry-planner/internal/config"
	"pantry-planner/internal/database"
	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/llm"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/messaging"
	"pantry-planner/internal/metrics"
	"pantry-planner/internal/notify"
	"pantry-planner/internal/recipe"
	"pantry-planner/internal/shopping"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	ingredientRepo := ingredient.NewRepository(db.SQL)
	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := mealplan.NewRepository(db.SQL)
	shoppingRepo := shopping.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	backupStore, err := backup.NewStore(cfg.BackupDir)
	if err != nil {
		logger.Fatal("failed to initialize backup store", zap.Error(err))
	}
	exporter := backup.NewExporter(backupStore, ingredientRepo, recipeRepo, planRepo, shoppingRepo)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		var recipeClipper *clipper.Clipper
		if cfg.GeminiAPIKey != "" {
			textGen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
			if err != nil {
				logger.Fatal("failed to initialize Gemini client", zap.Error(err))
			}
			recipeClipper = clipper.NewClipper(textGen)
		} else {
			logger.Warn("no Gemini API key configured, recipe clipping disabled")
		}

		var notifier *notify.Notifier
		if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
			sender, err := notify.NewTelegramSender(cfg.TelegramBotToken)
			if err != nil {
				logger.Fatal("failed to initialize telegram sender", zap.Error(err))
			}
			notifier = notify.NewNotifier(sender, cfg.TelegramChatID)
		} else {
			logger.Warn("no Telegram chat configured, list sharing disabled")
		}

		server := api.NewServer(
			cfg,
			logger,
			auth.NewManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour),
			messaging.NewHub(),
			metricsStore,
			recipeClipper,
			notifier,
			exporter,
			ingredientRepo,
			recipeRepo,
			planRepo,
			shoppingRepo,
		)
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := server.Router().Run(cfg.HTTPAddr); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}

	case "notify-expiring":
		notifyCmd := flag.NewFlagSet("notify-expiring", flag.ExitOnError)
		days := notifyCmd.Int("days", 3, "Remind about items expiring within N days")
		userID := notifyCmd.String("user", "", "User whose inventory to check")
		notifyCmd.Parse(os.Args[2:])
		if *userID == "" {
			log.Fatal("notify-expiring requires -user")
		}
		if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
			log.Fatal("notify-expiring requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}

		sender, err := notify.NewTelegramSender(cfg.TelegramBotToken)
		if err != nil {
			logger.Fatal("failed to initialize telegram sender", zap.Error(err))
		}
		notifier := notify.NewNotifier(sender, cfg.TelegramChatID)

		items, err := ingredientRepo.ListExpiringWithin(ctx, *userID, *days)
		if err != nil {
			logger.Fatal("failed to list expiring ingredients", zap.Error(err))
		}
		if err := notifier.ExpiringSoon(items, time.Now().UTC()); err != nil {
			logger.Fatal("failed to send reminder", zap.Error(err))
		}
		fmt.Printf("Sent reminder for %d item(s)\n", len(items))

	case "export":
		exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
		userID := exportCmd.String("user", "", "User whose data to export")
		exportCmd.Parse(os.Args[2:])
		if *userID == "" {
			log.Fatal("export requires -user")
		}

		_, path, err := exporter.Export(ctx, *userID)
		if err != nil {
			logger.Fatal("export failed", zap.Error(err))
		}
		fmt.Printf("Exported to %s\n", path)

	case "backup-prune":
		pruneCmd := flag.NewFlagSet("backup-prune", flag.ExitOnError)
		userID := pruneCmd.String("user", "", "User whose snapshots to prune")
		keep := pruneCmd.Int("keep", 5, "Number of newest snapshots to keep")
		pruneCmd.Parse(os.Args[2:])
		if *userID == "" {
			log.Fatal("backup-prune requires -user")
		}

		if err := backupStore.Prune(*userID, *keep); err != nil {
			logger.Fatal("backup prune failed", zap.Error(err))
		}
		remaining, err := backupStore.List(*userID)
		if err != nil {
			logger.Fatal("failed to list snapshots", zap.Error(err))
		}
		fmt.Printf("Kept %d snapshot(s)\n", len(remaining))

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(ctx, *days)
		if err != nil {
			logger.Fatal("metrics cleanup failed", zap.Error(err))
		}
		fmt.Printf("Removed %d metric record(s)\n", affected)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: pantry-planner <command>")
	fmt.Println("Commands:")
	fmt.Println("  serve                       Run the HTTP API server")
	fmt.Println("  notify-expiring -user <id>  Send a Telegram reminder for expiring items")
	fmt.Println("  export -user <id>           Write a full data snapshot to the backup directory")
	fmt.Println("  backup-prune -user <id> -keep <n>  Remove all but the newest n snapshots")
	fmt.Println("  metrics-cleanup -days <n>   Remove request metrics older than n days")
}
