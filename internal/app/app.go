// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobrunner/skyline/internal/adapters/catalog"
	"github.com/jobrunner/skyline/internal/adapters/h3geom"
	httpAdapter "github.com/jobrunner/skyline/internal/adapters/http"
	"github.com/jobrunner/skyline/internal/adapters/metrics"
	"github.com/jobrunner/skyline/internal/adapters/observation"
	"github.com/jobrunner/skyline/internal/adapters/storage"
	tlsAdapter "github.com/jobrunner/skyline/internal/adapters/tls"
	"github.com/jobrunner/skyline/internal/adapters/watcher"
	"github.com/jobrunner/skyline/internal/adapters/wcs"
	"github.com/jobrunner/skyline/internal/application"
	"github.com/jobrunner/skyline/internal/config"
	"github.com/jobrunner/skyline/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config          *config.Config
	Logger          *slog.Logger
	Storage         output.ObjectStorage
	Repository      *observation.Repository
	Catalog         *catalog.Catalog
	Registry        *application.FootprintRegistry
	CoverageService *application.CoverageService
	MosaicService   *application.MosaicService
	HealthService   *application.HealthService
	SyncService     *application.SyncService
	HTTPServer      *httpAdapter.Server
	TLSServer       *tlsAdapter.Server
	Watcher         *watcher.Watcher
	Metrics         *metrics.Collector
	MetricsServer   *metrics.Server
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("skyline")
		app.MetricsServer = metrics.NewServer(
			cfg.Metrics.Port,
			cfg.Metrics.Path,
			logger,
		)
	}

	var metricsCollector output.MetricsCollector
	if app.Metrics != nil {
		metricsCollector = app.Metrics
	} else {
		metricsCollector = &output.NoOpMetrics{}
	}

	// Initialize storage adapter
	store, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	// Initialize observation repository and geometry collaborators
	app.Repository = observation.NewRepository()

	polygons, err := h3geom.NewFactory(cfg.Geometry.Resolution)
	if err != nil {
		return nil, fmt.Errorf("initializing geometry: %w", err)
	}
	combiner := wcs.NewCombiner()

	// Initialize footprint registry
	app.Registry = application.NewFootprintRegistry(
		app.Repository,
		combiner,
		polygons,
		app.Storage,
		metricsCollector,
		logger,
		cfg.Storage.LocalPath,
		cfg.Footprints.RegionKind,
	)

	// Initialize mosaic run catalog
	app.Catalog, err = catalog.New(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing catalog: %w", err)
	}

	// Initialize services
	app.CoverageService = application.NewCoverageService(app.Registry, metricsCollector, logger)
	app.MosaicService = application.NewMosaicService(app.Registry, app.Catalog, metricsCollector, logger, cfg.Mosaic.Tolerant)
	app.HealthService = application.NewHealthService(app.Registry)

	// Initialize sync service if enabled
	if cfg.Sync.Enabled {
		app.SyncService = application.NewSyncService(app.Registry, cfg.Sync.Interval, logger)
	}

	// Initialize HTTP server
	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.CoverageService,
		app.MosaicService,
		app.Registry,
		app.HealthService,
		app.SyncService,
		logger,
	)

	// Initialize TLS server if enabled
	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(
			tlsAdapter.Config{
				Enabled:  cfg.TLS.Enabled,
				Domains:  cfg.TLS.Domains,
				Email:    cfg.TLS.Email,
				CacheDir: cfg.TLS.CacheDir,
				Staging:  cfg.TLS.Staging,
				DNS: tlsAdapter.DNSConfig{
					SubscriptionID:    cfg.TLS.DNS.SubscriptionID,
					ResourceGroupName: cfg.TLS.DNS.ResourceGroupName,
					ClientID:          cfg.TLS.DNS.ClientID,
				},
			},
			app.HTTPServer.Router(),
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	// Initialize file watcher for hot-reload
	if cfg.Storage.Type == "local" {
		w, err := watcher.New(
			watcher.Config{
				Paths: []string{cfg.Storage.LocalPath},
			},
			app.handleFileEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// Start starts all application components.
func (a *App) Start(ctx context.Context) error {
	// Load all observations from storage
	if err := a.Registry.LoadAll(ctx); err != nil {
		a.Logger.Warn("failed to load observations", "error", err)
	}

	// Start file watcher
	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	// Start sync scheduler
	if a.SyncService != nil {
		a.SyncService.Start(ctx)
	}

	// Start metrics server in background
	if a.MetricsServer != nil {
		go func() {
			if err := a.MetricsServer.Start(); err != nil && err.Error() != "http: Server closed" {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
	}

	// Start server
	if a.Config.TLS.Enabled && a.TLSServer != nil {
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}
	return a.HTTPServer.Start()
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	// Stop watcher
	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	// Stop sync scheduler
	if a.SyncService != nil {
		a.SyncService.Stop()
	}

	// Shutdown metrics server
	if a.MetricsServer != nil {
		if err := a.MetricsServer.Shutdown(ctx); err != nil {
			a.Logger.Error("metrics server shutdown error", "error", err)
		}
	}

	// Shutdown whichever server was serving
	if a.TLSServer != nil {
		if err := a.TLSServer.Shutdown(ctx); err != nil {
			a.Logger.Error("TLS server shutdown error", "error", err)
		}
	}
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", "error", err)
	}

	// Unload all observations
	observations, _ := a.Registry.ListObservations(ctx)
	for _, obs := range observations {
		if err := a.Registry.UnloadObservation(ctx, obs.ID); err != nil {
			a.Logger.Error("failed to unload observation", "id", obs.ID, "error", err)
		}
	}

	// Close the run catalog
	if a.Catalog != nil {
		if err := a.Catalog.Close(); err != nil {
			a.Logger.Error("catalog close error", "error", err)
		}
	}

	return nil
}

// handleFileEvent handles file system events for hot-reload.
func (a *App) handleFileEvent(ctx context.Context, event watcher.Event) error {
	a.Logger.Info("file event", "path", event.Path, "operation", event.Operation.String())

	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		// Reload the observation
		return a.Registry.LoadObservation(ctx, event.Path)

	case watcher.OpDelete:
		// Unload the observation by deriving its ID from the file path
		observationID := observation.DeriveSourceID(event.Path)
		if err := a.Registry.UnloadObservation(ctx, observationID); err != nil {
			a.Logger.Warn("failed to unload deleted observation", "id", observationID, "error", err)
		}
		return nil
	}

	return nil
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	switch cfg.Type {
	case "local":
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case "azure":
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case "http":
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
