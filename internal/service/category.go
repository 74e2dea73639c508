package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
)

type categoryService struct {
	repo postgres.CategoryRepository
}

func NewCategoryService(repo postgres.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req domain.CreateCategoryRequest) (uuid.UUID, error) {
	c := &domain.AlertCategory{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsActive:    true,
	}
	if c.Color == "" {
		c.Color = "#FF5733"
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.AlertCategory, error) {
	return s.repo.Get(ctx, id)
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req domain.UpdateCategoryRequest) error {
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
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	return s.repo.Update(ctx, c)
}
