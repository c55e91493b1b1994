package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"

	"restaurant-listing-admin/internal/admin"
	"restaurant-listing-admin/internal/constants"
	"restaurant-listing-admin/internal/domain"
	"restaurant-listing-admin/internal/form"
	"restaurant-listing-admin/internal/infrastructure/repository"
	"restaurant-listing-admin/internal/listing"
	"restaurant-listing-admin/internal/locations"
	"restaurant-listing-admin/internal/psgc"
	"restaurant-listing-admin/internal/screen"
	"restaurant-listing-admin/pkg/config"
	"restaurant-listing-admin/pkg/container"
	"restaurant-listing-admin/pkg/database"
	"restaurant-listing-admin/pkg/events"
	"restaurant-listing-admin/pkg/health"
	"restaurant-listing-admin/pkg/logging"
	metricsPkg "restaurant-listing-admin/pkg/metrics"
	"restaurant-listing-admin/pkg/monitoring"
)

func main() {
	// Build container and register providers
	c := container.New()

	// Config (singleton)
	_ = c.Provide(func() *config.Config { return config.Load() }, true)

	// Logger (singleton)
	_ = c.Provide(func(cfg *config.Config) (*logging.Logger, error) {
		lc := logging.DefaultLogConfig()
		lc.Level = logging.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
		lc.EnableFile = cfg.EnableFileLogging
		lc.FilePath = cfg.LogFile
		return logging.NewLogger(lc)
	}, true)

	// Database (singleton)
	_ = c.Provide(func(cfg *config.Config) (*database.DB, error) { return database.NewWithConfig(cfg.DatabaseURL, cfg) }, true)

	// Repository (singleton)
	_ = c.Provide(func(db *database.DB) domain.Repository { return repository.NewSQLRepository(db) }, true)

	// PSGC client and location resolver (singletons)
	_ = c.Provide(func(cfg *config.Config, logger *logging.Logger) *psgc.Client {
		client := psgc.NewClient(cfg.PSGCBaseURL, cfg.PSGCTimeout)
		client.Protect(logger)
		return client
	}, true)
	_ = c.Provide(func(cfg *config.Config, client *psgc.Client, logger *logging.Logger) *locations.Resolver {
		return locations.NewResolver(client, cfg.ProvinceCode, logger)
	}, true)

	// Listing store and form session (singletons)
	_ = c.Provide(func(repo domain.Repository, logger *logging.Logger) *listing.Store {
		return listing.NewStore(repo, logger)
	}, true)
	_ = c.Provide(func() *form.Session { return form.NewSession() }, true)

	// Event store (singleton)
	_ = c.Provide(func(db *database.DB) events.EventStore { return events.NewSQLEventStore(db) }, true)

	// Screen controller (singleton)
	_ = c.Provide(func(repo domain.Repository, store *listing.Store, session *form.Session, es events.EventStore, logger *logging.Logger) *screen.Controller {
		return screen.NewController(repo, store, session, es, logger, metricsPkg.Default)
	}, true)

	// Resolve config early and validate before anything talks to the network
	var cfg *config.Config
	if err := c.Resolve(&cfg); err != nil {
		log.Fatal("config resolve:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config validation: ", err)
	}
	log.Println("Starting restaurant listing admin")
	monitoring.EnableProfiling(cfg.ProfilingEnabled)

	// Load templates
	if err := admin.LoadTemplates(Templates()); err != nil {
		log.Fatal("Failed to load templates:", err)
	}

	// Set base path for templates
	admin.SetBasePath(cfg.BasePath)

	// Food type catalog from embedded config, with compiled-in fallback
	foodTypes := loadFoodTypeCatalog()

	// Resolve runtime dependencies
	var (
		db       *database.DB
		logger   *logging.Logger
		repo     domain.Repository
		store    *listing.Store
		resolver *locations.Resolver
		session  *form.Session
		ctrl     *screen.Controller
		es       events.EventStore
	)
	for _, target := range []interface{}{&db, &logger, &repo, &store, &resolver, &session, &ctrl, &es} {
		if err := c.Resolve(target); err != nil {
			log.Fatalf("dependency resolve (%T): %v", target, err)
		}
	}
	defer logger.Close()

	// Warm the listing and the region list. Both are best effort: the page
	// loads them again on demand.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), constants.PSGCRequestTimeout)
	store.Refresh(warmCtx)
	if err := resolver.LoadRegions(warmCtx); err != nil {
		logger.Warn("initial region load failed", logging.Error(err))
	}
	warmCancel()

	// Config watcher for hot-reload; changes that need a restart are only logged
	if cfg.ConfigReloadIntervalSeconds > 0 {
		cw := config.NewWatcher(time.Duration(cfg.ConfigReloadIntervalSeconds) * time.Second)
		cw.Start()
		defer cw.Close()
		chgCh := cw.Subscribe()
		go func() {
			for chg := range chgCh {
				if chg.Err != nil {
					log.Printf("Config reload failed: %v", chg.Err)
					continue
				}
				log.Printf("Config reloaded. Changed fields: %v", chg.Fields)
			}
		}()
	}

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Received shutdown signal, initiating graceful shutdown...")
		cancel()
	}()

	// HTTP routing
	router := mux.NewRouter()

	var httpMetrics *monitoring.Metrics
	if cfg.MetricsEnabled {
		httpMetrics = monitoring.NewMetrics(512)
		router.Use(monitoring.Middleware(httpMetrics))
	}

	router.HandleFunc("/", admin.HomeHandler(store, repo, foodTypes)).Methods("GET")

	router.HandleFunc("/api/restaurants", admin.APIRestaurantsHandler(repo)).Methods("GET")
	router.HandleFunc("/api/restaurants/{id}/history", admin.HistoryHandler(es)).Methods("GET")
	router.HandleFunc("/api/regions", admin.RegionsHandler(resolver)).Methods("GET")
	router.HandleFunc("/api/regions/{code}/barangays", admin.BarangaysHandler(resolver)).Methods("GET")
	router.HandleFunc("/api/stats", admin.APIStatsHandler(repo)).Methods("GET")

	router.HandleFunc("/restaurants", admin.SaveRestaurantHandler(repo, session, ctrl)).Methods("POST")
	router.HandleFunc("/restaurants/{id}/edit", admin.EditRestaurantHandler(repo, resolver, session)).Methods("GET")
	router.HandleFunc("/restaurants/{id}", admin.SaveRestaurantHandler(repo, session, ctrl)).Methods("POST")
	router.HandleFunc("/restaurants/{id}/delete", admin.DeleteRestaurantHandler(ctrl)).Methods("POST")

	healthMgr := health.NewManager(health.Config{Timeout: constants.HealthTimeoutDefault, Version: "1.0.0"}, logger)
	healthMgr.Register(health.NewDatabaseChecker(db.Conn(), "mysql"))
	healthMgr.Register(health.NewHTTPChecker(cfg.PSGCBaseURL+"/provinces/"+cfg.ProvinceCode, "psgc", cfg.PSGCTimeout))
	router.Handle(cfg.HealthCheckPath, health.Handler(healthMgr)).Methods("GET")

	if cfg.MetricsEnabled {
		router.Handle(cfg.MetricsPath, metricsPkg.Handler()).Methods("GET")
		router.Handle("/metrics.json", monitoring.MetricsHandler(httpMetrics)).Methods("GET")
	}

	if cfg.ProfilingEnabled {
		debugMux := http.NewServeMux()
		monitoring.RegisterPprof(debugMux)
		go func() {
			log.Printf("Profiling server listening on %s", cfg.ProfilingAddr)
			if err := http.ListenAndServe(cfg.ProfilingAddr, debugMux); err != nil && err != http.ErrServerClosed {
				log.Printf("Profiling server error: %v", err)
			}
		}()
	}

	staticPath := cfg.BasePath + "static/"
	router.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(http.FS(Static()))))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(router)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: corsHandler}

	go func() {
		fmt.Printf("Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error:", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}
	log.Println("Application shutdown complete")
}

func loadFoodTypeCatalog() []string {
	data, err := fs.ReadFile(ConfigFiles(), "food_types.yaml")
	if err != nil {
		log.Printf("food type config not readable, using defaults: %v", err)
		return form.LoadFoodTypes(nil)
	}
	return form.LoadFoodTypes(data)
}
