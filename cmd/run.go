package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"wingo/api"
	"wingo/config"
	"wingo/database"
	"wingo/events"
	"wingo/repository"
	"wingo/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting wingo server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	log.Println("Initializing event bus...")
	eventBus := events.NewBus()
	log.Println("Event bus initialized successfully")

	// Initialize unit of work factory
	log.Println("Initializing unit of work factory...")
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	log.Println("Unit of work factory initialized successfully")

	// Initialize services
	log.Println("Initializing services...")
	clock := service.SystemClock{}
	accountService := service.NewAccountService(uowFactory, cfg.InitialBalance)
	settlementService := service.NewSettlementService(uowFactory, service.CryptoOutcomeSource{}, clock, eventBus)
	roundService := service.NewRoundService(uowFactory, settlementService, clock, cfg.RoundDuration, cfg.LockWindow)
	wagerService := service.NewWagerService(uowFactory, roundService, clock, cfg)
	log.Println("Services initialized successfully")

	// Start the round worker so rounds advance without traffic
	log.Println("Starting round worker...")
	worker := service.NewRoundWorker(roundService, time.Second)
	stopWorker := worker.Start(ctx)

	// Start the HTTP server
	log.Println("Starting HTTP server...")
	api.RegisterRoutes(accountService, roundService, wagerService)
	go api.Serve(cfg.HTTPAddr)

	// Wait for context cancellation
	log.Printf("Server is running on %s in %s mode...", cfg.HTTPAddr, cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down server...")
	stopWorker()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
