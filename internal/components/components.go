package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sammiykay/community-alert/internal/api"
	"github.com/sammiykay/community-alert/internal/config"
	"github.com/sammiykay/community-alert/internal/redis"
	"github.com/sammiykay/community-alert/internal/service"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
	"github.com/sammiykay/community-alert/internal/workers"
	"github.com/sammiykay/community-alert/pkg/logger"
)

type Components struct {
	logger         *slog.Logger
	HttpServer     *api.Server
	Postgres       *postgres.Postgres
	Redis          *redis.Redis
	PushQueue      *redis.NotificationQueue
	PushSender     *workers.PushSender
	CacheRefresher *workers.CacheRefresher
	DeviceCleanup  *workers.DeviceCleanup
	PushDisabled   bool
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	communityCache := redis.NewCommunityCache(redisClient)
	pushQueue := redis.NewNotificationQueue(redisClient.Client, cfg.Push.QueueKey)

	communitySvc := service.NewCommunityService(storage.Community, communityCache, cfg.Cache.CommunityTTL, logger)
	categorySvc := service.NewCategoryService(storage.Category)
	notificationSvc := service.NewNotificationService(storage.Notification, storage.Device, storage.User, pushQueue, cfg.Push.Disabled, logger)
	userSvc := service.NewUserService(storage.User, communitySvc, logger)
	alertSvc := service.NewAlertService(storage.Alert, storage.Vote, storage.Comment, storage.User, storage.Category, communitySvc, notificationSvc, logger)
	statsSvc := service.NewStatsService(storage.Stat)

	srv := service.NewService(communitySvc, categorySvc, userSvc, alertSvc, notificationSvc, statsSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	return &Components{
		logger:         logger,
		HttpServer:     httpServer,
		Postgres:       storage,
		Redis:          redisClient,
		PushQueue:      pushQueue,
		PushSender:     workers.NewPushSender(logger, cfg.Push, pushQueue, storage.Notification),
		CacheRefresher: workers.NewCacheRefresher(communitySvc, cfg.Cache.RefreshInterval, logger),
		DeviceCleanup:  workers.NewDeviceCleanup(storage.Device, 24*time.Hour, logger),
		PushDisabled:   cfg.Push.Disabled,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
