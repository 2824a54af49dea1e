package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/eckscalego/internal/config"
	"github.com/xelth-com/eckscalego/internal/database"
	"github.com/xelth-com/eckscalego/internal/handlers"
	"github.com/xelth-com/eckscalego/internal/models"
	"github.com/xelth-com/eckscalego/internal/repository"
	"github.com/xelth-com/eckscalego/internal/scale"
	"github.com/xelth-com/eckscalego/internal/services/erp"
	"github.com/xelth-com/eckscalego/internal/services/weighing"
	"github.com/xelth-com/eckscalego/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema (Critical for Zero-Config)
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.Sequence{},

		// Yard equipment
		&models.WeighingScale{},
		&models.TruckFleet{},

		// ERP mirror
		&models.ResPartner{},
		&models.ProductProduct{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.SaleOrder{},
		&models.SaleOrderLine{},

		// Fulfillment documents
		&models.StockLocation{},
		&models.StockPicking{},
		&models.StockMove{},
		&models.StockMoveLine{},
		&models.DocumentNote{},

		// Weighbridge transactions
		&models.TruckWeighing{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Wire the engine
	store := repository.NewStore(db.DB)
	gateway := scale.NewHTTPGateway()

	hub := websocket.NewHub()
	go hub.Run()

	svc := weighing.NewService(store, gateway, hub)
	router := handlers.NewRouter(store, svc, gateway, hub, cfg.JWTSecret)

	// 5. Start ERP Sync Service (Background)
	erpService := erp.NewSyncService(db, cfg.ERP)
	erpService.Start()

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Weighbridge server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop ERP sync service
	erpService.Stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
