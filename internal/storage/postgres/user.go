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

type UserRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUserRepo(pool *pgxpool.Pool, logger *slog.Logger) *UserRepo {
	return &UserRepo{pool: pool, logger: logger}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.User.Create"

	const query = `
		INSERT INTO users (id, username, email, password_hash, phone, role, lat, lng,
		                   email_notifications, push_notifications, notification_radius_km,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Phone, u.Role, u.Lat, u.Lng,
		u.EmailNotifications, u.PushNotifications, u.NotificationRadius,
		u.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.User.Get"

	const query = `
		SELECT id, username, email, password_hash, phone, role, lat, lng,
		       email_notifications, push_notifications, notification_radius_km,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.Lat, &u.Lng,
		&u.EmailNotifications, &u.PushNotifications, &u.NotificationRadius,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}

	memberships, err := r.listMemberships(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.CommunityIDs = memberships

	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	const op = "postgres.User.Update"

	const query = `
		UPDATE users
		SET phone = $2, lat = $3, lng = $4,
		    email_notifications = $5, push_notifications = $6, notification_radius_km = $7,
		    updated_at = $8
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		u.ID, u.Phone, u.Lat, u.Lng,
		u.EmailNotifications, u.PushNotifications, u.NotificationRadius,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", u.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	return nil
}

func (r *UserRepo) CountEngagement(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	const op = "postgres.User.CountEngagement"

	const query = `
		SELECT (SELECT COUNT(*) FROM alerts WHERE created_by = $1),
		       (SELECT COUNT(*) FROM alert_votes WHERE user_id = $1)
	`

	var created, voted int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&created, &voted); err != nil {
		r.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return 0, 0, e.WrapError(ctx, op, err)
	}

	return created, voted, nil
}

func (r *UserRepo) AddMembership(ctx context.Context, userID, communityID uuid.UUID) error {
	const op = "postgres.User.AddMembership"

	const query = `
		INSERT INTO user_communities (user_id, community_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, community_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, userID, communityID)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

// ListCommunityRecipients returns active members of a community who opted in
// to the given notification channel.
func (r *UserRepo) ListCommunityRecipients(ctx context.Context, communityID uuid.UUID, channel domain.NotificationChannel) ([]domain.User, error) {
	const op = "postgres.User.ListCommunityRecipients"

	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.phone, u.role, u.lat, u.lng,
		       u.email_notifications, u.push_notifications, u.notification_radius_km,
		       u.created_at, u.updated_at
		FROM users u
		JOIN user_communities uc ON uc.user_id = u.id
		WHERE uc.community_id = $1
	`
	switch channel {
	case domain.ChannelPush:
		query += ` AND u.push_notifications`
	case domain.ChannelEmail:
		query += ` AND u.email_notifications`
	}

	rows, err := r.pool.Query(ctx, query, communityID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.Lat, &u.Lng,
			&u.EmailNotifications, &u.PushNotifications, &u.NotificationRadius,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return users, nil
}

func (r *UserRepo) listMemberships(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const op = "postgres.User.listMemberships"

	const query = `SELECT community_id FROM user_communities WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return ids, nil
}
