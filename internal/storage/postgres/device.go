package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type DeviceRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDeviceRepo(pool *pgxpool.Pool, logger *slog.Logger) *DeviceRepo {
	return &DeviceRepo{pool: pool, logger: logger}
}

func (r *DeviceRepo) Upsert(ctx context.Context, d *domain.Device) error {
	const op = "postgres.Device.Upsert"

	const query = `
		INSERT INTO devices (id, user_id, token, platform, name, is_active, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (user_id, token) DO UPDATE
		SET platform = EXCLUDED.platform,
		    name = EXCLUDED.name,
		    is_active = TRUE,
		    last_used_at = EXCLUDED.last_used_at
	`

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.IsActive = true
	d.LastUsedAt = now
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}

	if _, err := r.pool.Exec(ctx, query, d.ID, d.UserID, d.Token, d.Platform, d.Name, now); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, userID uuid.UUID, token string) error {
	const op = "postgres.Device.Delete"

	const query = `DELETE FROM devices WHERE user_id = $1 AND token = $2`

	cmd, err := r.pool.Exec(ctx, query, userID, token)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (r *DeviceRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Device, error) {
	const op = "postgres.Device.ListActive"

	const query = `
		SELECT id, user_id, token, platform, COALESCE(name, ''), is_active, last_used_at, created_at
		FROM devices
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY last_used_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var d domain.Device
		err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.Name, &d.IsActive, &d.LastUsedAt, &d.CreatedAt)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return devices, nil
}

func (r *DeviceRepo) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "postgres.Device.DeactivateStale"

	const query = `
		UPDATE devices
		SET is_active = FALSE
		WHERE is_active = TRUE AND last_used_at < $1
	`

	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}

	return cmd.RowsAffected(), nil
}
