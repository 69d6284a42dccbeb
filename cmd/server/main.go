package main // Entry point package

import (
	"context" // context for startup deadlines
	"log"     // Logging library
	"time"    // timeouts for schema provisioning

	"github.com/iliyamo/vehicle-fleet-service/internal/config"     // Internal config loader
	"github.com/iliyamo/vehicle-fleet-service/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/vehicle-fleet-service/internal/handler"    // HTTP handlers
	"github.com/iliyamo/vehicle-fleet-service/internal/middleware" // rate limiting middleware
	"github.com/iliyamo/vehicle-fleet-service/internal/queue"      // status change consumer
	"github.com/iliyamo/vehicle-fleet-service/internal/repository" // persistence layer
	"github.com/iliyamo/vehicle-fleet-service/internal/router"     // Internal router setup
	queue_publisher "github.com/iliyamo/vehicle-fleet-service/internal/service"
	"github.com/iliyamo/vehicle-fleet-service/internal/status" // vehicle status resolver
	"github.com/joho/godotenv"                                 // .env loader for local development
	"github.com/labstack/echo/v4"                              // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system env vars")
	}
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	// Provision any missing tables before accepting requests.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Redis is optional: without it the status cache is skipped and
	// rate limiting is disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without status cache and rate limiting")
	}

	vehicleRepo := repository.NewVehicleRepo(db)
	userRepo := repository.NewUserRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	usageRepo := repository.NewUsageRepo(db)
	maintenanceRepo := repository.NewMaintenanceRepo(db)

	var cache status.Cache
	if rdb != nil {
		cache = status.NewRedisCache(rdb, 5*time.Minute)
	}
	resolver := status.NewResolver(vehicleRepo, usageRepo, maintenanceRepo,
		cache, queue_publisher.PublishStatusChanged)

	e := echo.New()         // Create Echo instance
	e.HideBanner = true     // keep startup output to our own log lines
	e.Use(echomw.Recover()) // recover from handler panics
	e.Use(echomw.Logger())  // request logging
	if rdb != nil {
		// Distributed token bucket; simply skipped when Redis is down.
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	router.RegisterRoutes(e) // health check
	router.RegisterVehicles(e, handler.NewVehicleHandler(vehicleRepo, resolver),
		handler.NewStatusHandler(resolver))
	router.RegisterReservations(e, handler.NewReservationHandler(reservationRepo, vehicleRepo))
	router.RegisterUsage(e, handler.NewUsageHandler(usageRepo, vehicleRepo,
		maintenanceRepo, userRepo, resolver))
	router.RegisterMaintenance(e, handler.NewMaintenanceHandler(maintenanceRepo,
		vehicleRepo, userRepo, resolver, cfg.TaxRate()))
	router.RegisterUsers(e, handler.NewUserHandler(userRepo))
	router.RegisterReports(e, handler.NewReportHandler(maintenanceRepo, usageRepo,
		vehicleRepo, time.Month(cfg.FiscalStartMonth)), handler.NewStatusHandler(resolver))

	// Consume status change events in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("status consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
