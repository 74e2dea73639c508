package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStatsRepo(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

func (r *StatsRepo) System(ctx context.Context) (*domain.SystemStats, error) {
	const op = "postgres.Stats.System"

	const totalsQuery = `
		SELECT
			(SELECT COUNT(*) FROM alerts),
			(SELECT COUNT(*) FROM alerts WHERE status = 'active'),
			(SELECT COUNT(*) FROM alerts WHERE status = 'resolved'),
			(SELECT COUNT(*) FROM communities WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM alerts WHERE created_at >= NOW() - INTERVAL '7 days')
	`

	stats := &domain.SystemStats{AlertsBySeverity: make(map[string]int64)}

	err := r.pool.QueryRow(ctx, totalsQuery).Scan(
		&stats.TotalAlerts,
		&stats.ActiveAlerts,
		&stats.ResolvedAlerts,
		&stats.TotalCommunities,
		&stats.TotalUsers,
		&stats.RecentAlerts,
	)
	if err != nil {
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	const severityQuery = `SELECT severity, COUNT(*) FROM alerts GROUP BY severity`

	rows, err := r.pool.Query(ctx, severityQuery)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity string
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		stats.AlertsBySeverity[severity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return stats, nil
}
