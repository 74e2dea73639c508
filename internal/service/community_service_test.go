package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/geo"
	"github.com/sammiykay/community-alert/internal/service"

	mock_service "github.com/sammiykay/community-alert/internal/service/mocks"
)

func TestCommunityService_Resolve_NearestCoveringWins(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	near := domain.Community{
		ID:       uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Name:     "Near",
		Lat:      0.01,
		Lng:      0,
		RadiusKM: 10,
		IsActive: true,
	}
	far := domain.Community{
		ID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Name:     "Far",
		Lat:      0.05,
		Lng:      0,
		RadiusKM: 10,
		IsActive: true,
	}

	cache.EXPECT().
		GetActive(gomock.Any()).
		Return([]domain.Community{far, near}, nil).
		Times(1)

	got, err := svc.Resolve(context.Background(), geo.Point{Lat: 0, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || got.ID != near.ID {
		t.Fatalf("expected nearest community %s, got %+v", near.ID, got)
	}
}

func TestCommunityService_Resolve_NoCoverageReturnsNil(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	c := domain.Community{
		ID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Lat:      50,
		Lng:      50,
		RadiusKM: 1,
		IsActive: true,
	}

	cache.EXPECT().
		GetActive(gomock.Any()).
		Return([]domain.Community{c}, nil).
		Times(1)

	got, err := svc.Resolve(context.Background(), geo.Point{Lat: 0, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil community, got %+v", got)
	}
}

func TestCommunityService_List_CacheMissFallsBackToRepo(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	communities := []domain.Community{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "A", IsActive: true},
	}

	cache.EXPECT().
		GetActive(gomock.Any()).
		Return(nil, nil).
		Times(1)

	repo.EXPECT().
		List(gomock.Any(), false).
		Return(communities, nil).
		Times(1)

	cache.EXPECT().
		SetActive(gomock.Any(), communities, time.Minute).
		Return(nil).
		Times(1)

	got, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("unexpected communities: %+v", got)
	}
}

func TestCommunityService_List_CacheErrorStillServes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	communities := []domain.Community{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "A", IsActive: true},
	}

	cache.EXPECT().
		GetActive(gomock.Any()).
		Return(nil, errors.New("redis down")).
		Times(1)

	repo.EXPECT().
		List(gomock.Any(), false).
		Return(communities, nil).
		Times(1)

	cache.EXPECT().
		SetActive(gomock.Any(), communities, time.Minute).
		Return(errors.New("still down")).
		Times(1)

	got, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 community, got %d", len(got))
	}
}

func TestCommunityService_List_CachesEmptyResult(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	cache.EXPECT().
		GetActive(gomock.Any()).
		Return(nil, nil).
		Times(1)

	repo.EXPECT().
		List(gomock.Any(), false).
		Return(nil, nil).
		Times(1)

	// A nil slice must be written as an empty one, otherwise the cached JSON
	// null reads back as a miss and every call falls through to postgres.
	cache.EXPECT().
		SetActive(gomock.Any(), gomock.Any(), time.Minute).
		DoAndReturn(func(_ context.Context, cs []domain.Community, _ time.Duration) error {
			if cs == nil {
				t.Fatalf("expected empty slice, got nil")
			}
			if len(cs) != 0 {
				t.Fatalf("expected no communities, got %d", len(cs))
			}
			return nil
		}).
		Times(1)

	got, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no communities, got %d", len(got))
	}
}

func TestCommunityService_List_IncludeInactiveBypassesCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	repo.EXPECT().
		List(gomock.Any(), true).
		Return([]domain.Community{}, nil).
		Times(1)

	if _, err := svc.List(context.Background(), true); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestCommunityService_Create_RefreshesCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	req := domain.CreateCommunityRequest{
		Name:     "Lekki Phase 1",
		Lat:      6.44,
		Lng:      3.47,
		RadiusKM: 4,
	}

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.Community) error {
			if !c.IsActive {
				t.Fatalf("expected new community active")
			}
			if c.Name != req.Name {
				t.Fatalf("expected name %q, got %q", req.Name, c.Name)
			}
			return nil
		}).
		Times(1)

	repo.EXPECT().
		List(gomock.Any(), false).
		Return([]domain.Community{{Name: req.Name}}, nil).
		Times(1)

	cache.EXPECT().
		SetActive(gomock.Any(), gomock.Any(), time.Minute).
		Return(nil).
		Times(1)

	id, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected generated id")
	}
}

func TestCommunityService_RefreshCache_ReturnsCount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockCommunityRepository(ctrl)
	cache := mock_service.NewMockCommunityCacheService(ctrl)
	svc := service.NewCommunityService(repo, cache, time.Minute, testLogger())

	communities := []domain.Community{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111")},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222")},
	}

	repo.EXPECT().
		List(gomock.Any(), false).
		Return(communities, nil).
		Times(1)

	cache.EXPECT().
		SetActive(gomock.Any(), communities, time.Minute).
		Return(nil).
		Times(1)

	n, err := svc.RefreshCache(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cached, got %d", n)
	}
}
