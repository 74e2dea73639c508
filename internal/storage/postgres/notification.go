package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type NotificationRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewNotificationRepo(pool *pgxpool.Pool, logger *slog.Logger) *NotificationRepo {
	return &NotificationRepo{pool: pool, logger: logger}
}

func (r *NotificationRepo) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	const op = "postgres.Notification.CreateBatch"

	if len(notifications) == 0 {
		return nil
	}

	const query = `
		INSERT INTO notifications (id, alert_id, user_id, channel, status, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.Status == "" {
			n.Status = domain.NotificationPending
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		batch.Queue(query, n.ID, n.AlertID, n.UserID, n.Channel, n.Status, n.Title, n.Message, n.CreatedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range notifications {
		if _, err := results.Exec(); err != nil {
			r.logger.Error("db batch exec failed", slog.String("op", op), slog.Any("error", err))
			return e.WrapError(ctx, op, err)
		}
	}

	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	const op = "postgres.Notification.ListByUser"

	const query = `
		SELECT id, alert_id, user_id, channel, status, title, message, created_at, sent_at, COALESCE(external_id, '')
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.AlertID, &n.UserID, &n.Channel, &n.Status, &n.Title, &n.Message, &n.CreatedAt, &n.SentAt, &n.ExternalID)
		if err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return notifications, nil
}

func (r *NotificationRepo) MarkSent(ctx context.Context, ids []uuid.UUID, sentAt time.Time, externalID string) error {
	const op = "postgres.Notification.MarkSent"

	const query = `
		UPDATE notifications
		SET status = $1, sent_at = $2, external_id = $3
		WHERE id = ANY($4)
	`

	if _, err := r.pool.Exec(ctx, query, domain.NotificationSent, sentAt, externalID, ids); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *NotificationRepo) MarkFailed(ctx context.Context, ids []uuid.UUID) error {
	const op = "postgres.Notification.MarkFailed"

	const query = `UPDATE notifications SET status = $1 WHERE id = ANY($2)`

	if _, err := r.pool.Exec(ctx, query, domain.NotificationFailed, ids); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}
