package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/paginator"
)

type CommunityRepository interface {
	Create(ctx context.Context, c *domain.Community) error
	List(ctx context.Context, includeInactive bool) ([]domain.Community, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Community, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error)
	Update(ctx context.Context, c *domain.Community) error
	Disable(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.AlertCategory) error
	List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.AlertCategory, error)
	Update(ctx context.Context, c *domain.AlertCategory) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	CountEngagement(ctx context.Context, id uuid.UUID) (created, voted int64, err error)
	AddMembership(ctx context.Context, userID, communityID uuid.UUID) error
	ListCommunityRecipients(ctx context.Context, communityID uuid.UUID, channel domain.NotificationChannel) ([]domain.User, error)
}

type AlertRepository interface {
	Create(ctx context.Context, a *domain.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.AlertFilter, page paginator.PaginateQuery) ([]domain.Alert, int64, error)
	ListActiveWithinBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Alert, error)
	Update(ctx context.Context, a *domain.Alert) error
	SetVoteCounts(ctx context.Context, id uuid.UUID, up, down int64) error
}

type VoteRepository interface {
	Get(ctx context.Context, alertID, userID uuid.UUID) (*domain.AlertVote, error)
	Upsert(ctx context.Context, v *domain.AlertVote) error
	Delete(ctx context.Context, alertID, userID uuid.UUID) error
	Counts(ctx context.Context, alertID uuid.UUID) (up, down int64, err error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *domain.AlertComment) error
	Get(ctx context.Context, id uuid.UUID) (*domain.AlertComment, error)
	ListByAlert(ctx context.Context, alertID uuid.UUID) ([]domain.AlertComment, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, ns []*domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, ids []uuid.UUID, sentAt time.Time, externalID string) error
	MarkFailed(ctx context.Context, ids []uuid.UUID) error
}

type DeviceRepository interface {
	Upsert(ctx context.Context, d *domain.Device) error
	Delete(ctx context.Context, userID uuid.UUID, token string) error
	ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Device, error)
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type StatsRepository interface {
	System(ctx context.Context) (*domain.SystemStats, error)
}
