package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/salonhq/salon-backend/internal/inventory/client"
	"github.com/salonhq/salon-backend/internal/inventory/consumers"
	"github.com/salonhq/salon-backend/internal/inventory/events"
	"github.com/salonhq/salon-backend/internal/inventory/handler"
	"github.com/salonhq/salon-backend/internal/inventory/repository"
	"github.com/salonhq/salon-backend/internal/inventory/service"
	"github.com/salonhq/salon-backend/pkg/config"
	"github.com/salonhq/salon-backend/pkg/database"
	"github.com/salonhq/salon-backend/pkg/httputil"
	"github.com/salonhq/salon-backend/pkg/logger"
	"github.com/salonhq/salon-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewInventoryEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	// Initialize external service clients
	catalogClient := client.NewCatalogClient(cfg.Services.CatalogServiceURL, log)
	purchasingClient := client.NewPurchasingClient(cfg.Services.PurchasingServiceURL, log)

	// Initialize service
	inventoryService := service.NewInventoryService(
		db, stockRepo, batchRepo, movementRepo,
		catalogClient, publisher,
		cfg.Inventory.ExpiringSoonDays, log,
	).WithPurchasingClient(purchasingClient)

	// Initialize handlers
	stockHandler := handler.NewStockHandler(inventoryService, log)
	batchHandler := handler.NewBatchHandler(inventoryService, log)
	dashboardHandler := handler.NewDashboardHandler(inventoryService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start delivery event consumer
	deliveryConsumer, err := consumers.NewDeliveryEventConsumer(rmq, inventoryService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create delivery event consumer")
	}
	if err := deliveryConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start delivery event consumer")
	}

	// Start background expiry sweep
	scheduler := service.NewExpiryScheduler(inventoryService, cfg.Inventory.ExpirySweepInterval, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(httputil.ActorMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Email", "X-User-Role"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		// Stock ledger routes
		r.Route("/stocks", func(r chi.Router) {
			r.Use(httputil.RequirePermission("inventory.stocks.write"))
			r.Post("/add", stockHandler.AddStock)
			r.Post("/reduce", stockHandler.ReduceStock)
			r.Post("/deduct", batchHandler.Deduct)
			r.Patch("/{id}", stockHandler.Update)
		})

		// Delivery intake
		r.With(httputil.RequirePermission("inventory.batches.receive")).
			Post("/deliveries", batchHandler.Deliver)

		// Branch-scoped reads and the expiration sweep
		r.Route("/branches/{branchId}", func(r chi.Router) {
			r.Get("/stocks", stockHandler.ListByBranch)
			r.Get("/movements", stockHandler.Movements)
			r.Get("/batches", batchHandler.List)
			r.Get("/batches/expiring", batchHandler.Expiring)
			r.Get("/batches/expired", batchHandler.Expired)
			r.Post("/batches/expiration-sweep", batchHandler.Sweep)
			r.Get("/dashboard/stats", dashboardHandler.Stats)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop the consumer and scheduler
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
