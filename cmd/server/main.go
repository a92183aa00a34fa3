package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"planner/internal/app"
	"planner/internal/config"
	"planner/internal/handler"
	"planner/internal/metrics"
	internalRedis "planner/internal/redis"
	"planner/internal/repository/postgres"
	"planner/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server, wizardService, processingService := wireServer(db, redisClient, nrApp, cfg)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go wizardService.RunJanitor(janitorCtx, time.Minute)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// Let started processing sequences hand their plans off before the stores close.
	processingService.Wait()

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.WizardService, *service.ProcessingService) {
	registry := prometheus.NewRegistry()
	wizardMetrics := metrics.NewWizardMetrics(registry)

	// Initialize Redis stores.
	draftStore := internalRedis.NewDraftStore(redisClient, cfg.Wizard.DraftTTL)
	lockStore := internalRedis.NewLockStore(redisClient)
	statusStore := internalRedis.NewStatusStore(redisClient)

	// Initialize repositories.
	planRepo := postgres.NewPlanRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService()
	planService := service.NewPlanService(planRepo, notificationService, wizardMetrics)
	processingService := service.NewProcessingService(statusStore, planService, cfg.Wizard.StatusInterval)
	wizardService := service.NewWizardService(
		service.WizardServiceConfig{
			LockTTL: cfg.Wizard.LockTTL,
			IdleTTL: cfg.Wizard.SessionIdleTTL,
		},
		draftStore,
		lockStore,
		notificationService,
		processingService,
		wizardMetrics,
	)

	// Initialize handlers.
	wizardHandler := handler.NewWizardHandler(wizardService, processingService)
	planHandler := handler.NewPlanHandler(planService)

	router := app.NewRouter(app.RouterDeps{
		WizardHandler: wizardHandler,
		PlanHandler:   planHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
		Gatherer:      registry,
		CORSOrigins:   cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, wizardService, processingService
}
