package service

import (
	"context"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
)

type statsService struct {
	repo postgres.StatsRepository
}

func NewStatsService(repo postgres.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) System(ctx context.Context) (*domain.SystemStats, error) {
	return s.repo.System(ctx)
}
