package postgres

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type CommunityRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCommunityRepo(pool *pgxpool.Pool, logger *slog.Logger) *CommunityRepo {
	return &CommunityRepo{pool: pool, logger: logger}
}

func (r *CommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	const op = "postgres.Community.Create"

	const query = `
		INSERT INTO communities (id, name, description, lat, lng, radius_km, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.Lat, c.Lng, c.RadiusKM, c.IsActive, c.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *CommunityRepo) List(ctx context.Context, includeInactive bool) ([]domain.Community, error) {
	const op = "postgres.Community.List"

	query := `
		SELECT id, name, description, lat, lng, radius_km, is_active, created_at
		FROM communities
	`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var communities []domain.Community
	for rows.Next() {
		var c domain.Community
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Lat, &c.Lng, &c.RadiusKM, &c.IsActive, &c.CreatedAt,
		); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		communities = append(communities, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return communities, nil
}

func (r *CommunityRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	const op = "postgres.Community.Get"

	const query = `
		SELECT id, name, description, lat, lng, radius_km, is_active, created_at
		FROM communities
		WHERE id = $1
	`

	var c domain.Community
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.Lat, &c.Lng, &c.RadiusKM, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &c, nil
}

func (r *CommunityRepo) GetDetail(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error) {
	const op = "postgres.Community.GetDetail"

	const query = `
		SELECT c.id, c.name, c.description, c.lat, c.lng, c.radius_km, c.is_active, c.created_at,
		       (SELECT COUNT(*) FROM user_communities uc WHERE uc.community_id = c.id) AS member_count,
		       (SELECT COUNT(*) FROM alerts a WHERE a.community_id = c.id AND a.is_public) AS alert_count,
		       (SELECT COUNT(*) FROM alerts a WHERE a.community_id = c.id AND a.is_public AND a.status = 'active') AS active_count
		FROM communities c
		WHERE c.id = $1 AND c.is_active = TRUE
	`

	var d domain.CommunityDetail
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Description, &d.Lat, &d.Lng, &d.RadiusKM, &d.IsActive, &d.CreatedAt,
		&d.MemberCount, &d.AlertCount, &d.ActiveCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &d, nil
}

func (r *CommunityRepo) Update(ctx context.Context, c *domain.Community) error {
	const op = "postgres.Community.Update"

	const query = `
		UPDATE communities
		SET name = $2, description = $3, lat = $4, lng = $5, radius_km = $6, is_active = $7
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Description, c.Lat, c.Lng, c.RadiusKM, c.IsActive,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", c.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

// Disable soft-disables; communities are never removed.
func (r *CommunityRepo) Disable(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Community.Disable"

	const query = `
		UPDATE communities
		SET is_active = FALSE
		WHERE id = $1 AND is_active = TRUE
	`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}
