package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/e"
	"github.com/sammiykay/community-alert/pkg/paginator"
)

type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger}
}

const alertColumns = `
	id, title, description, category_id, severity, status, lat, lng, address,
	community_id, created_by, updated_by, incident_at, created_at, updated_at,
	resolved_at, view_count, upvotes, downvotes, is_public, is_verified`

func scanAlert(row pgx.Row, a *domain.Alert) error {
	return row.Scan(
		&a.ID, &a.Title, &a.Description, &a.CategoryID, &a.Severity, &a.Status,
		&a.Lat, &a.Lng, &a.Address, &a.CommunityID, &a.CreatedBy, &a.UpdatedBy,
		&a.IncidentAt, &a.CreatedAt, &a.UpdatedAt, &a.ResolvedAt,
		&a.ViewCount, &a.Upvotes, &a.Downvotes, &a.IsPublic, &a.IsVerified,
	)
}

func (r *AlertRepo) Create(ctx context.Context, a *domain.Alert) error {
	const op = "postgres.Alert.Create"

	const query = `
		INSERT INTO alerts (id, title, description, category_id, severity, status,
		                    lat, lng, address, community_id, created_by, incident_at,
		                    created_at, updated_at, is_public, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, $14, FALSE)
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.CreatedAt
	if a.Status == "" {
		a.Status = domain.AlertActive
	}
	if a.Severity == "" {
		a.Severity = domain.SeverityMedium
	}

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Title, a.Description, a.CategoryID, a.Severity, a.Status,
		a.Lat, a.Lng, a.Address, a.CommunityID, a.CreatedBy, a.IncidentAt,
		a.CreatedAt, a.IsPublic,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.Get"

	query := `SELECT` + alertColumns + ` FROM alerts WHERE id = $1`

	var a domain.Alert
	if err := scanAlert(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &a, nil
}

func (r *AlertRepo) GetPublic(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.GetPublic"

	query := `SELECT` + alertColumns + ` FROM alerts WHERE id = $1 AND is_public`

	var a domain.Alert
	if err := scanAlert(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	return &a, nil
}

func (r *AlertRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Alert.IncrementViews"

	const query = `UPDATE alerts SET view_count = view_count + 1 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// List returns public alerts newest first, narrowed by the filter.
func (r *AlertRepo) List(ctx context.Context, filter domain.AlertFilter, page paginator.PaginateQuery) ([]domain.Alert, int64, error) {
	const op = "postgres.Alert.List"

	page.Adjust()

	where, args := buildAlertFilter(filter)

	countQuery := `SELECT COUNT(*) FROM alerts ` + where

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	listQuery := `SELECT` + alertColumns + ` FROM alerts ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, 0, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	return alerts, total, nil
}

func buildAlertFilter(filter domain.AlertFilter) (string, []any) {
	conds := []string{"is_public"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.CategoryID != nil {
		conds = append(conds, "category_id = "+arg(*filter.CategoryID))
	}
	if filter.CommunityID != nil {
		conds = append(conds, "community_id = "+arg(*filter.CommunityID))
	}
	if filter.Severity != "" {
		conds = append(conds, "severity = "+arg(filter.Severity))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(title ILIKE "+p+" OR description ILIKE "+p+" OR address ILIKE "+p+")")
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListActiveWithinBox is the coarse prefilter for proximity queries; the
// exact haversine ordering happens in the service layer.
func (r *AlertRepo) ListActiveWithinBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Alert, error) {
	const op = "postgres.Alert.ListActiveWithinBox"

	query := `SELECT` + alertColumns + `
		FROM alerts
		WHERE is_public
		  AND status = 'active'
		  AND lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
	`

	rows, err := r.pool.Query(ctx, query, minLat, maxLat, minLng, maxLng)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := scanAlert(rows, &a); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return alerts, nil
}

func (r *AlertRepo) Update(ctx context.Context, a *domain.Alert) error {
	const op = "postgres.Alert.Update"

	const query = `
		UPDATE alerts
		SET title = $2, description = $3, category_id = $4, severity = $5, status = $6,
		    address = $7, updated_by = $8, incident_at = $9, resolved_at = $10,
		    is_verified = $11, updated_at = $12
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		a.ID, a.Title, a.Description, a.CategoryID, a.Severity, a.Status,
		a.Address, a.UpdatedBy, a.IncidentAt, a.ResolvedAt,
		a.IsVerified, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", a.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (r *AlertRepo) SetVoteCounts(ctx context.Context, id uuid.UUID, up, down int64) error {
	const op = "postgres.Alert.SetVoteCounts"

	const query = `UPDATE alerts SET upvotes = $2, downvotes = $3 WHERE id = $1`

	cmd, err := r.pool.Exec(ctx, query, id, up, down)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}
