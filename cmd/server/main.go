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

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playpool/pong3d/internal/admin"
	"github.com/playpool/pong3d/internal/api"
	"github.com/playpool/pong3d/internal/config"
	"github.com/playpool/pong3d/internal/database"
	"github.com/playpool/pong3d/internal/game"
	"github.com/playpool/pong3d/internal/migrations"
	"github.com/playpool/pong3d/internal/redis"
	"github.com/playpool/pong3d/internal/ws"
)

func main() {
	// Initialize configuration (loads .env if present)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[CONFIG] Invalid configuration: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.Printf("[SENTRY] init failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres and Redis are optional: without them matches still run,
	// they are just not recorded.
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Postgres unavailable, match history disabled: %v", err)
		} else {
			db = conn
			defer db.Close()

			if os.Getenv("MIGRATE_ON_START") == "true" {
				log.Println("[MIGRATE] Running DB migrations on startup...")
				if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
					log.Fatalf("Failed to run migrations: %v", err)
				}
			}
		}
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		conn, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[REDIS] Redis unavailable, snapshots and idle tracking disabled: %v", err)
		} else {
			rdb = conn
			defer rdb.Close()
		}
	}

	game.InitializeManager(ctx, db, rdb, cfg)
	if db != nil {
		defaults, err := admin.LoadRuntimeDefaults(db, cfg)
		if err != nil {
			log.Printf("[CONFIG] Runtime config not applied: %v", err)
		} else if err := game.Manager.SetDefaults(defaults); err != nil {
			log.Printf("[CONFIG] Runtime defaults rejected: %v", err)
		}
	}
	game.StartIdleWorker(ctx, rdb, cfg)

	// Wire Redis and start the match event subscriber in the WS layer
	ws.Configure(rdb, cfg)
	ws.StartMatchEventSubscriber(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting pong3d server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	game.Manager.Shutdown()
}
