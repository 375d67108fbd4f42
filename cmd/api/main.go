package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datanexus/internal/chain"
	"datanexus/internal/config"
	"datanexus/internal/database"
	"datanexus/internal/database/migration"
	handlers "datanexus/internal/http/handler"
	"datanexus/internal/http/middleware"
	"datanexus/internal/ledger/evm"
	"datanexus/internal/otel"
	"datanexus/internal/repository/postgres"
	"datanexus/internal/service"
	"datanexus/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Registration journal database (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Content store: pinning gateway by default, S3-compatible as fallback
	var store storage.Store
	switch cfg.Store.Provider {
	case "s3":
		store, err = storage.NewS3(cfg.Store.S3)
	default:
		store, err = storage.NewGateway(cfg.Store.Gateway)
	}
	if err != nil {
		log.Fatalf("failed to initialize content store: %v", err)
	}

	// On-chain dataset registry
	registry, err := evm.NewRegistry(cfg.Ledger)
	if err != nil {
		log.Fatalf("failed to initialize ledger registry: %v", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(promRegistry)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}
	pipelineMetrics, err := service.NewPipelineMetrics(promRegistry)
	if err != nil {
		log.Fatalf("failed to initialize pipeline metrics: %v", err)
	}

	journal := postgres.NewJournalPostgres(db)
	regSvc := service.NewRegistrationService(
		store, registry, journal,
		chain.ID(cfg.Ledger.ChainID), cfg.Reconcile, pipelineMetrics,
	)
	catSvc := service.NewCatalogService(registry, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    bodyLimit(cfg.Store.Gateway.MaxUploadBytes),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, regSvc, catSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func bodyLimit(maxUploadBytes int64) int {
	if maxUploadBytes <= 0 {
		return 512 * 1024 * 1024
	}
	// Leave room for the multipart framing around the file part.
	return int(maxUploadBytes) + 1024*1024
}
