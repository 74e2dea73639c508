package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/geo"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
)

type communityService struct {
	repo     postgres.CommunityRepository
	cache    CommunityCacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewCommunityService(
	repo postgres.CommunityRepository,
	cache CommunityCacheService,
	cacheTTL time.Duration,
	logger *slog.Logger,
) CommunityService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &communityService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (s *communityService) Create(ctx context.Context, req domain.CreateCommunityRequest) (uuid.UUID, error) {
	c := &domain.Community{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		RadiusKM:    req.RadiusKM,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.RefreshCache(ctx); err != nil {
		s.logger.Warn("community cache refresh after create failed", slog.Any("error", err))
	}

	return c.ID, nil
}

func (s *communityService) List(ctx context.Context, includeInactive bool) ([]domain.Community, error) {
	if includeInactive {
		return s.repo.List(ctx, true)
	}
	return s.activeCommunities(ctx)
}

func (s *communityService) Get(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *communityService) Update(ctx context.Context, id uuid.UUID, req domain.UpdateCommunityRequest) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Lat != nil {
		c.Lat = *req.Lat
	}
	if req.Lng != nil {
		c.Lng = *req.Lng
	}
	if req.RadiusKM != nil {
		c.RadiusKM = *req.RadiusKM
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}

	if _, err := s.RefreshCache(ctx); err != nil {
		s.logger.Warn("community cache refresh after update failed", slog.Any("error", err))
	}

	return nil
}

func (s *communityService) Disable(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Disable(ctx, id); err != nil {
		return err
	}

	if _, err := s.RefreshCache(ctx); err != nil {
		s.logger.Warn("community cache refresh after disable failed", slog.Any("error", err))
	}

	return nil
}

// Resolve maps a point to its community: the nearest active community whose
// boundary covers the point, or nil when none does.
func (s *communityService) Resolve(ctx context.Context, p geo.Point) (*domain.Community, error) {
	communities, err := s.activeCommunities(ctx)
	if err != nil {
		return nil, err
	}

	zones := make([]geo.Zone, 0, len(communities))
	byID := make(map[uuid.UUID]domain.Community, len(communities))
	for _, c := range communities {
		zones = append(zones, c.Zone())
		byID[c.ID] = c
	}

	zone, err := geo.Resolve(p, zones)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, nil
	}

	c := byID[zone.ID]
	return &c, nil
}

func (s *communityService) RefreshCache(ctx context.Context) (int, error) {
	communities, err := s.repo.List(ctx, false)
	if err != nil {
		return 0, err
	}
	if communities == nil {
		// A nil slice marshals to JSON null, which reads back as a cache miss.
		communities = []domain.Community{}
	}
	if err := s.cache.SetActive(ctx, communities, s.cacheTTL); err != nil {
		return 0, err
	}
	return len(communities), nil
}

func (s *communityService) activeCommunities(ctx context.Context) ([]domain.Community, error) {
	cached, err := s.cache.GetActive(ctx)
	if err != nil {
		s.logger.Warn("community cache read failed, falling back to db", slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	communities, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if communities == nil {
		communities = []domain.Community{}
	}

	if err := s.cache.SetActive(ctx, communities, s.cacheTTL); err != nil {
		s.logger.Warn("community cache write failed", slog.Any("error", err))
	}

	return communities, nil
}
