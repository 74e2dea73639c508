package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
)

type CategoryRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCategoryRepo(pool *pgxpool.Pool, logger *slog.Logger) *CategoryRepo {
	return &CategoryRepo{pool: pool, logger: logger}
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.AlertCategory) error {
	const op = "postgres.Category.Create"

	const query = `
		INSERT INTO alert_categories (id, name, description, icon, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Color == "" {
		c.Color = "#007bff"
	}

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.Icon, c.Color, c.IsActive)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *CategoryRepo) List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error) {
	const op = "postgres.Category.List"

	query := `
		SELECT id, name, description, icon, color, is_active
		FROM alert_categories
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

	var categories []domain.AlertCategory
	for rows.Next() {
		var c domain.AlertCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.IsActive); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return categories, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id uuid.UUID) (*domain.AlertCategory, error) {
	const op = "postgres.Category.Get"

	const query = `
		SELECT id, name, description, icon, color, is_active
		FROM alert_categories
		WHERE id = $1
	`

	var c domain.AlertCategory
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.AlertCategory) error {
	const op = "postgres.Category.Update"

	const query = `
		UPDATE alert_categories
		SET name = $2, description = $3, icon = $4, color = $5, is_active = $6
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.Icon, c.Color, c.IsActive)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", c.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}
