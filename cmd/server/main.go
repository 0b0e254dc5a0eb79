package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/city-lottery/internal/config"
	"github.com/stwalsh4118/city-lottery/internal/database"
	"github.com/stwalsh4118/city-lottery/internal/director"
	"github.com/stwalsh4118/city-lottery/internal/handlers"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/middleware"
	"github.com/stwalsh4118/city-lottery/internal/repository"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

// saveStore is an open save slot backend.
type saveStore struct {
	pinger handlers.Pinger
	repo   repository.SaveRepository
	close  func()
}

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env).WithOptions(cfg.Log.Options)
	log.Info("Starting city lottery host", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"store":       cfg.Store.Driver,
	})

	// Load the ordinance settings. The server still starts without them so
	// that readiness can report the problem.
	d := director.New(cfg.Plugin.SettingsPath, log)
	if !d.PostAppInit() {
		log.Warn("Ordinance settings are not loaded, cities cannot be opened", map[string]interface{}{
			"path": cfg.Plugin.SettingsPath,
		})
	}

	ctx := context.Background()
	store := openStore(ctx, cfg, log)
	defer store.close()

	cityService := services.NewCityService(d, store.repo, nil, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(store.pinger, d, cfg.Server.Env, cfg.Store.Driver, d.Lottery().ID())
	handlers.RegisterRoutes(router, healthHandler, cityService)

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	// Unload the open city so the ordinance is unbound before exit
	if err := cityService.Close(shutdownCtx); err != nil && !errors.Is(err, services.ErrNoCity) {
		log.Error("Failed to close the city", err, nil)
	}

	log.Info("Server exited", nil)
}

// openStore connects the configured save store. Failures are fatal.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) saveStore {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			log.Fatal("Failed to create the save schema", err, nil)
		}

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
		return saveStore{pinger: db, repo: repository.NewSaveRepository(db), close: db.Close}

	default:
		db, err := database.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal("Failed to open save file", err, map[string]interface{}{
				"path": cfg.Store.SQLitePath,
			})
		}

		log.Info("Save file opened", map[string]interface{}{
			"path": cfg.Store.SQLitePath,
		})
		return saveStore{
			pinger: db,
			repo:   repository.NewSQLiteSaveRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.Error("Failed to close save file", err, nil)
				}
			},
		}
	}
}
