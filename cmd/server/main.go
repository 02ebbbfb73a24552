package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/david/becas-dashboard/internal/api"
	"github.com/david/becas-dashboard/internal/config"
	"github.com/david/becas-dashboard/internal/dataset"
	"github.com/david/becas-dashboard/internal/db"
	"github.com/david/becas-dashboard/internal/ingest"
	"github.com/david/becas-dashboard/internal/refresh"
	"github.com/david/becas-dashboard/internal/views"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	viewReg, err := views.LoadViews(cfg.ViewsPath)
	if err != nil {
		log.Fatalf("Failed to load views: %v", err)
	}
	projector, err := views.NewProjector(viewReg)
	if err != nil {
		log.Fatalf("Invalid views: %v", err)
	}

	sources, err := ingest.LoadRegistry(cfg.SourcesPath, cfg.RegistryDefaults())
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}
	sources.ApplyFetchDefaults(cfg.FetchTimeout, cfg.FetchMaxRetries)

	router := &ingest.Router{}
	if usesScheme(sources, "s3://") {
		s3f, err := ingest.NewS3Fetcher(ctx, ingest.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to configure S3: %v", err)
		}
		router.S3 = s3f
	}
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := db.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		router.Postgres = &ingest.PostgresFetcher{Store: db.NewDocumentStore(pool)}
	} else if usesScheme(sources, "pg://") {
		log.Fatalf("pg:// sources need DATABASE_URL")
	}

	loader, err := ingest.NewLoader(sources, router)
	if err != nil {
		log.Fatalf("Failed to build loader: %v", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := dataset.NewStore()
	coord := refresh.New(loader, store, projector, refresh.Options{
		Interval: cfg.RefreshInterval,
		Metrics:  refresh.NewMetrics(promReg),
	})
	coord.Subscribe(func(st refresh.Status, results []views.ViewResult) {
		log.Printf("[refresh] cycle %s published %d views (state=%s)", st.CycleID, len(results), st.State)
	})
	go coord.Run(ctx)

	srv := api.NewServer(api.Config{
		Store:       store,
		Projector:   projector,
		Refresher:   coord,
		Gatherer:    promReg,
		CORSOrigins: cfg.CORSOrigins,
	})
	go func() {
		<-ctx.Done()
		log.Printf("Shutting down...")
		_ = srv.Echo.Close()
	}()

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := srv.Start(cfg.Port); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

func usesScheme(reg *ingest.Registry, prefix string) bool {
	for _, s := range reg.Sources {
		if strings.HasPrefix(strings.ToLower(s.Location), prefix) {
			return true
		}
	}
	return false
}
