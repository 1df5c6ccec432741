package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"price-compare/internal/cache"
	"price-compare/internal/config"
	"price-compare/internal/handlers"
	"price-compare/internal/logger"
	"price-compare/internal/pricing"
	"price-compare/internal/repository"
	"price-compare/internal/routes"
	"price-compare/internal/search"
)

func main() {
	// 1. Configuración
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// 2. Logger
	appLogger, err := logger.New(logger.Config{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer appLogger.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Catálogo
	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Could not open catalog", zap.Error(err))
	}
	defer catalog.Close()

	if err := repository.SeedStores(ctx, catalog); err != nil {
		appLogger.Fatal("Could not seed stores", zap.Error(err))
	}
	appLogger.Info("Catalog ready", zap.String("backend", cfg.Catalog.Backend))

	// 4. Precios y servicio de búsqueda
	table, err := pricing.LoadTable(cfg.Pricing.BracketsFile)
	if err != nil {
		appLogger.Fatal("Could not load price brackets", zap.Error(err))
	}
	policy, err := search.ParseRepeatPolicy(cfg.Catalog.RepeatQuery)
	if err != nil {
		appLogger.Fatal("Invalid repeat query policy", zap.Error(err))
	}
	svc := search.NewService(catalog, pricing.NewSynthesizer(table, nil), policy, appLogger)

	// 5. Caché con limpieza periódica
	respCache := cache.New(cfg.Cache.TTL)
	go respCache.Start(ctx, cfg.Cache.TTL)

	// 6. HTTP
	h := handlers.NewHandler(svc, respCache, appLogger, cfg.Docs.SpecDir)
	router := routes.NewRouter(h, appLogger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func openCatalog(ctx context.Context, cfg *config.Config) (repository.Catalog, error) {
	if cfg.Catalog.Backend != config.BackendSQLite {
		return repository.NewMemoryCatalog(nil, nil), nil
	}
	c, err := repository.NewSQLCatalog(ctx, cfg.Catalog.SQLiteDSN, nil, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}
