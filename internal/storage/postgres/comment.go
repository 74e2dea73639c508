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

type CommentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCommentRepo(pool *pgxpool.Pool, logger *slog.Logger) *CommentRepo {
	return &CommentRepo{pool: pool, logger: logger}
}

func (r *CommentRepo) Create(ctx context.Context, c *domain.AlertComment) error {
	const op = "postgres.Comment.Create"

	const query = `
		INSERT INTO alert_comments (id, alert_id, user_id, content, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = c.CreatedAt

	if _, err := r.pool.Exec(ctx, query, c.ID, c.AlertID, c.UserID, c.Content, c.ParentID, c.CreatedAt); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *CommentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.AlertComment, error) {
	const op = "postgres.Comment.Get"

	const query = `
		SELECT id, alert_id, user_id, content, parent_id, created_at, updated_at
		FROM alert_comments
		WHERE id = $1 AND NOT is_deleted
	`

	var c domain.AlertComment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.AlertID, &c.UserID, &c.Content, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return &c, nil
}

func (r *CommentRepo) ListByAlert(ctx context.Context, alertID uuid.UUID) ([]domain.AlertComment, error) {
	const op = "postgres.Comment.ListByAlert"

	const query = `
		SELECT c.id, c.alert_id, c.user_id, u.username, c.content, c.parent_id, c.created_at, c.updated_at
		FROM alert_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.alert_id = $1 AND NOT c.is_deleted
		ORDER BY c.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, alertID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var comments []domain.AlertComment
	for rows.Next() {
		var c domain.AlertComment
		if err := rows.Scan(&c.ID, &c.AlertID, &c.UserID, &c.Username, &c.Content, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return comments, nil
}

func (r *CommentRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Comment.SoftDelete"

	const query = `
		UPDATE alert_comments
		SET is_deleted = TRUE, updated_at = $2
		WHERE id = $1 AND NOT is_deleted
	`

	cmd, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}
