package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/repository"
	"github.com/noah-isme/roomplan-api/internal/service"
	"github.com/noah-isme/roomplan-api/pkg/cache"
	"github.com/noah-isme/roomplan-api/pkg/config"
	"github.com/noah-isme/roomplan-api/pkg/database"
	"github.com/noah-isme/roomplan-api/pkg/events"
	"github.com/noah-isme/roomplan-api/pkg/logger"
)

// @title Roomplan API
// @version 1.0.0
// @description Room, teacher and timetable administration with conflict-checked bookings.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logr.Fatal("schema migration failed", zap.Error(err))
		}
		logr.Info("schema migrated", zap.String("driver", cfg.Database.Driver))
	}

	metrics := service.NewMetricsService()

	var liveStore service.LiveScheduleStore
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, live schedule cache disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		} else {
			store := repository.NewLiveScheduleCache(client)
			defer store.Close()
			liveStore = store
		}
	}
	cacheSvc := service.NewCacheService(liveStore, metrics, cfg.Cache.LiveTTL, logr, liveStore != nil)

	var notifier *service.ChangeNotifier
	if cfg.Events.Enabled {
		publisher, err := events.NewAMQPPublisher(cfg.Events, logr)
		if err != nil {
			logr.Warn("event publishing disabled", zap.String("exchange", cfg.Events.Exchange), zap.Error(err))
			notifier = service.NewChangeNotifier(cacheSvc, nil, metrics, logr)
		} else {
			defer publisher.Close()
			notifier = service.NewChangeNotifier(cacheSvc, publisher, metrics, logr)
		}
	} else {
		notifier = service.NewChangeNotifier(cacheSvc, nil, metrics, logr)
	}

	router := newRouter(cfg, logr, db, metrics, cacheSvc, notifier)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("timezone", cfg.Schedule.Location().String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
