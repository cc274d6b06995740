package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"paysync/internal/api"
	"paysync/internal/api/handlers"
	"paysync/internal/api/middleware"
	"paysync/internal/engine/reconcile"
	"paysync/internal/pkg/logger"
	"paysync/internal/platform/audit"
	"paysync/internal/platform/auth"
	"paysync/internal/platform/config"
	"paysync/internal/platform/database"
	"paysync/internal/platform/repositories"
)

func main() {
	// Local development convenience; in deployment everything comes from the
	// environment or the yaml file.
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

	// Repositories
	orderRepo := repositories.NewOrderRepository(db)
	logRepo := repositories.NewWebhookLogRepository(db)

	// Services
	auditLog := audit.NewLogger(logRepo)
	engine := reconcile.New(orderRepo, cfg.Gateway.CreateOnCapture)
	tokenSvc := auth.NewTokenService(cfg.JWT)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(cfg.Gateway, engine, auditLog)
	logHandler := handlers.NewLogHandler(logRepo)
	orderHandler := handlers.NewOrderHandler(orderRepo)
	healthHandler := handlers.NewHealthHandler(client)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)

	router := api.NewRouter(&api.Dependencies{
		WebhookHandler: webhookHandler,
		LogHandler:     logHandler,
		OrderHandler:   orderHandler,
		HealthHandler:  healthHandler,
		AuthMiddleware: authMiddleware,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
