package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"paysync/internal/pkg/logger"
	"paysync/internal/platform/config"
	"paysync/internal/platform/database"
	"paysync/internal/platform/repositories"
	"paysync/internal/workers"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	client, db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	logRepo := repositories.NewWebhookLogRepository(db)

	log.Printf("Retention worker starting, ttl=%s interval=%s",
		cfg.Retention.WebhookLogTTL, cfg.Retention.SweepInterval)

	runRetentionSweep(logRepo, cfg.Retention)
}

func runRetentionSweep(pruner workers.LogPruner, cfg config.RetentionConfig) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if _, err := workers.PruneWebhookLogs(ctx, pruner, cfg.WebhookLogTTL); err != nil {
			log.Printf("Error pruning webhook logs: %v", err)
		}
		cancel()
	}
}
