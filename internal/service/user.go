package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
	"github.com/sammiykay/community-alert/pkg/encrypter"
)

const defaultNotificationRadiusKm = 5.0

type userService struct {
	repo        postgres.UserRepository
	communities CommunityService
	logger      *slog.Logger
}

func NewUserService(repo postgres.UserRepository, communities CommunityService, logger *slog.Logger) UserService {
	return &userService{
		repo:        repo,
		communities: communities,
		logger:      logger,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserProfile, error) {
	hash, err := encrypter.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", slog.Any("error", err))
		return nil, err
	}

	u := &domain.User{
		ID:                 uuid.New(),
		Username:           req.Username,
		Email:              req.Email,
		PasswordHash:       hash,
		Phone:              req.Phone,
		Role:               domain.RoleMember,
		Lat:                req.Lat,
		Lng:                req.Lng,
		EmailNotifications: true,
		PushNotifications:  true,
		NotificationRadius: defaultNotificationRadiusKm,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.joinHomeCommunity(ctx, u)

	return &domain.UserProfile{User: *u}, nil
}

func (s *userService) Profile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	created, voted, err := s.repo.CountEngagement(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		User:          *u,
		AlertsCreated: created,
		AlertsVoted:   voted,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	hadLocation := u.Lat != nil && u.Lng != nil

	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Lat != nil {
		u.Lat = req.Lat
	}
	if req.Lng != nil {
		u.Lng = req.Lng
	}
	if req.EmailNotifications != nil {
		u.EmailNotifications = *req.EmailNotifications
	}
	if req.PushNotifications != nil {
		u.PushNotifications = *req.PushNotifications
	}
	if req.NotificationRadius != nil {
		u.NotificationRadius = *req.NotificationRadius
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if !hadLocation || req.Lat != nil || req.Lng != nil {
		s.joinHomeCommunity(ctx, u)
	}

	return s.Profile(ctx, id)
}

// joinHomeCommunity resolves the user's location into a community membership.
// Failures only log: registration must not fail because resolution did.
func (s *userService) joinHomeCommunity(ctx context.Context, u *domain.User) {
	p, ok := u.Location()
	if !ok {
		return
	}

	community, err := s.communities.Resolve(ctx, p)
	if err != nil {
		s.logger.Warn("community resolution failed",
			slog.String("user_id", u.ID.String()),
			slog.Any("error", err))
		return
	}
	if community == nil {
		return
	}

	if err := s.repo.AddMembership(ctx, u.ID, community.ID); err != nil {
		s.logger.Warn("community membership insert failed",
			slog.String("user_id", u.ID.String()),
			slog.String("community_id", community.ID.String()),
			slog.Any("error", err))
		return
	}

	u.CommunityIDs = append(u.CommunityIDs, community.ID)
}
