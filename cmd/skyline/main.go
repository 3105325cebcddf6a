// Package main provides the entry point for the Skyline sky coverage service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobrunner/skyline/internal/adapters/h3geom"
	"github.com/jobrunner/skyline/internal/adapters/observation"
	"github.com/jobrunner/skyline/internal/adapters/storage"
	"github.com/jobrunner/skyline/internal/adapters/wcs"
	"github.com/jobrunner/skyline/internal/app"
	"github.com/jobrunner/skyline/internal/application"
	"github.com/jobrunner/skyline/internal/config"
	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skyline",
	Short: "Skyline - Sky Coverage Query Service",
	Long: `Skyline is a sky coverage and mosaic assembly service.

It loads observation footprints, answers point coverage queries against
them, and assembles greedy mosaics from overlapping observations.

Features:
  - Point coverage queries (RA/Dec)
  - Footprint union and intersection with member provenance
  - Greedy mosaic assembly with tolerant or strict overlap handling
  - Multiple storage backends (local, AWS S3, Azure, HTTP)
  - Hot-reload of observation files
  - TLS with automatic certificate management
  - Prometheus metrics`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Skyline %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

var mosaicCmd = &cobra.Command{
	Use:   "mosaic <directory>",
	Short: "Assemble a mosaic from observation files in a directory",
	Long: `Loads every observation file from the given directory, runs the
greedy mosaic assembly over them, and prints the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runMosaic,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")

	// Server flags
	rootCmd.Flags().String("host", "0.0.0.0", "server host")
	rootCmd.Flags().Int("port", 8080, "server port")
	rootCmd.Flags().Bool("tls", false, "enable TLS")
	rootCmd.Flags().StringSlice("tls-domains", nil, "TLS domains")
	rootCmd.Flags().String("tls-email", "", "TLS email for Let's Encrypt")

	// Storage flags
	rootCmd.Flags().String("storage-type", "local", "storage type (local, s3, azure, http)")
	rootCmd.Flags().String("storage-path", "./data", "local storage path")

	// CORS flags
	rootCmd.Flags().StringSlice("cors", nil, "allowed CORS origins (e.g., https://example.com,*.sub.domain.tld)")

	// Footprint flags
	rootCmd.Flags().String("region-kind", "SCI", "region kind used to filter member regions")
	rootCmd.Flags().Int("resolution", 6, "cell resolution for footprint polygons (0-15)")
	rootCmd.Flags().Bool("tolerant", true, "skip observations whose union fails instead of aborting")
	rootCmd.Flags().String("catalog-path", "./skyline.db", "path to the mosaic run catalog database")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("server.host", rootCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("tls.enabled", rootCmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("tls.domains", rootCmd.Flags().Lookup("tls-domains"))
	_ = viper.BindPFlag("tls.email", rootCmd.Flags().Lookup("tls-email"))
	_ = viper.BindPFlag("storage.type", rootCmd.Flags().Lookup("storage-type"))
	_ = viper.BindPFlag("storage.local_path", rootCmd.Flags().Lookup("storage-path"))
	_ = viper.BindPFlag("server.cors.allowed_origins", rootCmd.Flags().Lookup("cors"))
	_ = viper.BindPFlag("footprints.region_kind", rootCmd.Flags().Lookup("region-kind"))
	_ = viper.BindPFlag("geometry.resolution", rootCmd.Flags().Lookup("resolution"))
	_ = viper.BindPFlag("mosaic.tolerant", rootCmd.Flags().Lookup("tolerant"))
	_ = viper.BindPFlag("catalog.path", rootCmd.Flags().Lookup("catalog-path"))

	// One-shot mosaic flags
	mosaicCmd.Flags().String("region-kind", "SCI", "region kind used to filter member regions")
	mosaicCmd.Flags().Int("resolution", 6, "cell resolution for footprint polygons (0-15)")
	mosaicCmd.Flags().Bool("tolerant", true, "skip observations whose union fails instead of aborting")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mosaicCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting Skyline",
		"version", version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage_type", cfg.Storage.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize application
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address())
		if err := application.Start(ctx); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		cancel()
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	logger.Info("shutting down server")
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func runMosaic(cmd *cobra.Command, args []string) error {
	dir := args[0]
	regionKind, _ := cmd.Flags().GetString("region-kind")
	resolution, _ := cmd.Flags().GetInt("resolution")
	tolerant, _ := cmd.Flags().GetBool("tolerant")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	polygons, err := h3geom.NewFactory(resolution)
	if err != nil {
		return fmt.Errorf("initializing geometry: %w", err)
	}

	registry := application.NewFootprintRegistry(
		observation.NewRepository(),
		wcs.NewCombiner(),
		polygons,
		storage.NewLocalStorage(dir),
		&output.NoOpMetrics{},
		logger,
		dir,
		regionKind,
	)

	ctx := context.Background()
	if err := registry.LoadAll(ctx); err != nil {
		return fmt.Errorf("loading observations: %w", err)
	}

	ids, footprints := registry.ReadyFootprints()
	if len(footprints) == 0 {
		return fmt.Errorf("no observations found in %s", dir)
	}
	fmt.Printf("Loaded %d observations from %s\n", len(ids), dir)

	result, err := domain.BuildMosaic(footprints, domain.OverlapOptions{
		Tolerant: tolerant,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("assembling mosaic: %w", err)
	}

	if result.Footprint == nil {
		fmt.Println("No mosaic: no overlapping observations")
		return nil
	}

	fmt.Printf("Included (%d):\n", len(result.Included))
	for _, id := range result.Included {
		fmt.Printf("  %s\n", id)
	}
	if len(result.Excluded) > 0 {
		fmt.Printf("Excluded (%d):\n", len(result.Excluded))
		for _, id := range result.Excluded {
			fmt.Printf("  %s\n", id)
		}
	}
	fmt.Printf("Members: %d\n", result.Footprint.MemberCount())
	fmt.Printf("Area: %.4f sq deg\n", result.Footprint.Area())
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
