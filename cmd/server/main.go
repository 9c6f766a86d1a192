package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"settlement/internal/cache"
	"settlement/internal/config"
	"settlement/internal/db"
	httpapi "settlement/internal/http"
	"settlement/internal/repository"
	"settlement/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	rates := cache.RateCache(cache.NoopRateCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisRateCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Printf("redis unavailable (%v), using noop rate cache", err)
		} else {
			rates = redisCache
			defer redisCache.Close()
			log.Println("rate cache: redis")
		}
	}

	repo := repository.New(pool)
	svc := service.New(repo, rates, service.Options{
		UploadDir:         cfg.UploadDir,
		ExportDir:         cfg.ExportDir,
		AllowedExtensions: cfg.AllowedExtensions,
		RateCacheTTL:      time.Duration(cfg.RateCacheTTLSecs) * time.Second,
	})
	if err := svc.EnsureDefaultUser(ctx); err != nil {
		log.Fatalf("default user init error: %v", err)
	}

	sessions := httpapi.NewSessionManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	handler := httpapi.NewHandler(svc, sessions)
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("settlement backend listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil {
			log.Printf("force close failed: %v", closeErr)
		}
	}
}
