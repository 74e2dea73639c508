package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type VoteRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewVoteRepo(pool *pgxpool.Pool, logger *slog.Logger) *VoteRepo {
	return &VoteRepo{pool: pool, logger: logger}
}

func (r *VoteRepo) Get(ctx context.Context, alertID, userID uuid.UUID) (*domain.AlertVote, error) {
	const op = "postgres.Vote.Get"

	const query = `
		SELECT alert_id, user_id, vote, created_at
		FROM alert_votes
		WHERE alert_id = $1 AND user_id = $2
	`

	var v domain.AlertVote
	err := r.pool.QueryRow(ctx, query, alertID, userID).Scan(&v.AlertID, &v.UserID, &v.Vote, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return &v, nil
}

func (r *VoteRepo) Upsert(ctx context.Context, v *domain.AlertVote) error {
	const op = "postgres.Vote.Upsert"

	const query = `
		INSERT INTO alert_votes (alert_id, user_id, vote, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (alert_id, user_id) DO UPDATE SET vote = EXCLUDED.vote
	`

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, query, v.AlertID, v.UserID, v.Vote, v.CreatedAt); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *VoteRepo) Delete(ctx context.Context, alertID, userID uuid.UUID) error {
	const op = "postgres.Vote.Delete"

	const query = `DELETE FROM alert_votes WHERE alert_id = $1 AND user_id = $2`

	cmd, err := r.pool.Exec(ctx, query, alertID, userID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (r *VoteRepo) Counts(ctx context.Context, alertID uuid.UUID) (int64, int64, error) {
	const op = "postgres.Vote.Counts"

	const query = `
		SELECT COUNT(*) FILTER (WHERE vote = 'up'),
		       COUNT(*) FILTER (WHERE vote = 'down')
		FROM alert_votes
		WHERE alert_id = $1
	`

	var up, down int64
	if err := r.pool.QueryRow(ctx, query, alertID).Scan(&up, &down); err != nil {
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, 0, e.WrapError(ctx, op, err)
	}

	return up, down, nil
}
