package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idcard.link/configs"
	"idcard.link/configs/configsdatabase"
	"idcard.link/configs/configslog"
	"idcard.link/database"
	"idcard.link/repositories"
	"idcard.link/routes"
	"idcard.link/scheduler"
	"idcard.link/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configs.LoadEnv()
	configslog.InitLogger()
	defer configslog.SyncLogger()

	cfg := configs.LoadConfig()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()
	db := configsdatabase.GetDB()

	if configs.GetEnv("AUTO_MIGRATE") == "true" {
		if err := database.Initialize(db, true, false); err != nil {
			configslog.Log.Fatal("Auto migration failed", zap.Error(err))
		}
	}

	var revoked services.RevocationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			configslog.Log.Fatal("Redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer client.Close()
		revoked = services.NewRedisRevocationStore(client, cfg.RedisNamespace)
		configslog.SLog.Infof("Session revocations stored in Redis (%s)", cfg.RedisAddr)
	} else {
		revoked = services.NewDBRevocationStore(repositories.NewRevokedSessionRepository(db))
		configslog.SLog.Info("Session revocations stored in the database")
	}

	cleanup, err := scheduler.StartTokenCleanup(cfg.TokenCleanupSchedule, revoked)
	if err != nil {
		configslog.Log.Fatal("Token cleanup schedule invalid", zap.String("schedule", cfg.TokenCleanupSchedule), zap.Error(err))
	}

	app := routes.NewApp(cfg)
	routes.SetupRoutes(app, routes.NewContainer(db, cfg, revoked))

	go func() {
		configslog.SLog.Infof("%s listening on %s", cfg.AppName, cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			configslog.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	configslog.SLog.Info("Shutting down...")

	<-cleanup.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		configslog.Log.Error("Server shutdown failed", zap.Error(err))
	}
	configslog.SLog.Info("Server stopped")
}
