package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/catalog-service/internal/adapter/cache"
	"github.com/rl1809/catalog-service/internal/adapter/handler"
	"github.com/rl1809/catalog-service/internal/adapter/imagestore"
	"github.com/rl1809/catalog-service/internal/adapter/storage"
	"github.com/rl1809/catalog-service/internal/config"
	"github.com/rl1809/catalog-service/internal/core/service"
	"github.com/rl1809/catalog-service/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logger.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize the cache store backend
	var cacheStore port.CacheStore
	var rdb *redis.Client
	switch cfg.Cache.Backend {
	case "redis":
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		cacheStore = cache.NewRedisCache(rdb)
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	default:
		cacheStore = cache.NewMemoryCache()
	}

	images, err := imagestore.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal("failed to init image store", zap.Error(err))
	}

	items := storage.NewMySQLAdapter(db)
	catalog := service.NewCatalogService(items, cacheStore, images, logger,
		cfg.Service.PageSize, cfg.Service.LatestLimit)

	httpHandler := handler.NewHTTPHandler(catalog, images, logger, cfg.Upload.MaxBytes)
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info("connections closed")
}
