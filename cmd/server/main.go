package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"openup/internal/config"
	"openup/internal/db"
	"openup/internal/jobs"
	"openup/internal/metrics"
	"openup/internal/server"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Seed the plan catalog
	catalog, err := config.LoadPlanCatalog(cfg.PlanCatalogFile)
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}
	if err := database.SeedPlans(ctx, catalog); err != nil {
		log.Fatalf("Failed to seed plans: %v", err)
	}
	log.Printf("Plan catalog seeded (%d plans)", len(catalog.Plans))

	// Register Prometheus collectors
	metrics.Init(database)

	// Background jobs
	sweeper := jobs.NewExpirySweeper(database, cfg.SweepInterval)
	go sweeper.Start(ctx)

	pruner := jobs.NewRetentionPruner(database, 24*time.Hour, catalog.MaxRetentionDays())
	go pruner.Start(ctx)

	// HTTP server
	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
