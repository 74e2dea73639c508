package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/config"
	"github.com/sammiykay/community-alert/pkg/e"
)

type Postgres struct {
	Pool         *pgxpool.Pool
	Community    CommunityRepository
	Category     CategoryRepository
	User         UserRepository
	Alert        AlertRepository
	Vote         VoteRepository
	Comment      CommentRepository
	Notification NotificationRepository
	Device       DeviceRepository
	Stat         StatsRepository
}

func NewPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.SSLMode,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("Failed to parse pgx config", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.ParseConfig", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	poolCfg.MaxConnLifetime = cfg.Postgres.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Failed to create pgx pool", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.pg.NewPostgres.NewWithConfig", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Failed to ping Postgres database", slog.String("error", err.Error()))
		pool.Close()
		return nil, e.Wrap("storage.pg.NewPostgres.Ping", err)
	}
	logger.Info("Connected to Postgres successfully")

	pg := &Postgres{
		Pool:         pool,
		Community:    NewCommunityRepo(pool, logger),
		Category:     NewCategoryRepo(pool, logger),
		User:         NewUserRepo(pool, logger),
		Alert:        NewAlertRepo(pool, logger),
		Vote:         NewVoteRepo(pool, logger),
		Comment:      NewCommentRepo(pool, logger),
		Notification: NewNotificationRepo(pool, logger),
		Device:       NewDeviceRepo(pool, logger),
		Stat:         NewStatsRepo(pool, logger),
	}

	return pg, nil
}
