package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/geo"
	"github.com/sammiykay/community-alert/pkg/paginator"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=mocks
//go:generate mockgen -source=../storage/postgres/repository.go -destination=mocks/mock_repository.go -package=mocks

type CommunityService interface {
	Create(ctx context.Context, req domain.CreateCommunityRequest) (uuid.UUID, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Community, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateCommunityRequest) error
	Disable(ctx context.Context, id uuid.UUID) error
	Resolve(ctx context.Context, p geo.Point) (*domain.Community, error)
	RefreshCache(ctx context.Context) (int, error)
}

type CategoryService interface {
	Create(ctx context.Context, req domain.CreateCategoryRequest) (uuid.UUID, error)
	List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.AlertCategory, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateCategoryRequest) error
}

type UserService interface {
	Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserProfile, error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req domain.UpdateProfileRequest) (*domain.UserProfile, error)
}

type AlertService interface {
	Create(ctx context.Context, req domain.CreateAlertRequest) (*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.AlertDetail, error)
	List(ctx context.Context, filter domain.AlertFilter, page paginator.PaginateQuery) (*domain.ListAlertsResponse, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateAlertRequest) (*domain.Alert, error)
	Moderate(ctx context.Context, id uuid.UUID, req domain.ModerateAlertRequest) error
	Nearby(ctx context.Context, req domain.NearbyRequest) (*domain.NearbyResponse, error)
	Vote(ctx context.Context, alertID uuid.UUID, req domain.VoteRequest) (*domain.VoteResponse, error)
	Comment(ctx context.Context, alertID uuid.UUID, req domain.CreateCommentRequest) (*domain.AlertComment, error)
	DeleteComment(ctx context.Context, alertID, commentID uuid.UUID, req domain.DeleteCommentRequest) error
}

type NotificationService interface {
	FanOut(ctx context.Context, alert *domain.Alert, community *domain.Community) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	RegisterDevice(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error)
	UnregisterDevice(ctx context.Context, req domain.UnregisterDeviceRequest) error
	ListDevices(ctx context.Context, userID uuid.UUID) ([]domain.Device, error)
}

type StatsService interface {
	System(ctx context.Context) (*domain.SystemStats, error)
}

// CommunityCacheService mirrors the redis-side cache.
type CommunityCacheService interface {
	GetActive(ctx context.Context) ([]domain.Community, error)
	SetActive(ctx context.Context, communities []domain.Community, ttl time.Duration) error
}

// NotificationQueue hands push payloads to the sender worker.
type NotificationQueue interface {
	Enqueue(ctx context.Context, payload domain.PushPayload) error
}

type Service struct {
	Communities   CommunityService
	Categories    CategoryService
	Users         UserService
	Alerts        AlertService
	Notifications NotificationService
	Stats         StatsService
}

func NewService(
	communities CommunityService,
	categories CategoryService,
	users UserService,
	alerts AlertService,
	notifications NotificationService,
	stats StatsService,
) *Service {
	return &Service{
		Communities:   communities,
		Categories:    categories,
		Users:         users,
		Alerts:        alerts,
		Notifications: notifications,
		Stats:         stats,
	}
}
