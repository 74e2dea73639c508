package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/geo"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
	"github.com/sammiykay/community-alert/pkg/e"
	"github.com/sammiykay/community-alert/pkg/paginator"
)

// kmPerDegreeLat is the rough box pre-filter scale; exact distances are
// recomputed per candidate afterwards.
const kmPerDegreeLat = 111.0

type alertService struct {
	alerts      postgres.AlertRepository
	votes       postgres.VoteRepository
	comments    postgres.CommentRepository
	users       postgres.UserRepository
	categories  postgres.CategoryRepository
	communities CommunityService
	notifier    NotificationService
	logger      *slog.Logger
}

func NewAlertService(
	alerts postgres.AlertRepository,
	votes postgres.VoteRepository,
	comments postgres.CommentRepository,
	users postgres.UserRepository,
	categories postgres.CategoryRepository,
	communities CommunityService,
	notifier NotificationService,
	logger *slog.Logger,
) AlertService {
	return &alertService{
		alerts:      alerts,
		votes:       votes,
		comments:    comments,
		users:       users,
		categories:  categories,
		communities: communities,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *alertService) Create(ctx context.Context, req domain.CreateAlertRequest) (*domain.Alert, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("parse category_id: %w", e.ErrInvalidInput)
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	category, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, fmt.Errorf("category %s is disabled: %w", categoryID, e.ErrInvalidInput)
	}

	severity := req.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	a := &domain.Alert{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  categoryID,
		Severity:    severity,
		Status:      domain.AlertActive,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Address:     req.Address,
		CreatedBy:   userID,
		IncidentAt:  req.IncidentAt,
		IsPublic:    isPublic,
	}

	community, err := s.communities.Resolve(ctx, a.Location())
	if err != nil {
		return nil, err
	}
	if community != nil {
		a.CommunityID = &community.ID
	}

	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("alert created",
		slog.String("alert_id", a.ID.String()),
		slog.String("severity", string(a.Severity)),
		slog.Bool("in_community", community != nil))

	if community != nil {
		if err := s.notifier.FanOut(ctx, a, community); err != nil {
			s.logger.Error("notification fan-out failed",
				slog.String("alert_id", a.ID.String()),
				slog.Any("error", err))
		}
	}

	return a, nil
}

func (s *alertService) Get(ctx context.Context, id uuid.UUID) (*domain.AlertDetail, error) {
	a, err := s.alerts.GetPublic(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.alerts.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("view count increment failed",
			slog.String("alert_id", id.String()),
			slog.Any("error", err))
	} else {
		a.ViewCount++
	}

	comments, err := s.comments.ListByAlert(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.AlertDetail{Alert: *a, Comments: comments}, nil
}

func (s *alertService) List(ctx context.Context, filter domain.AlertFilter, page paginator.PaginateQuery) (*domain.ListAlertsResponse, error) {
	page.Adjust()

	alerts, total, err := s.alerts.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	return &domain.ListAlertsResponse{
		Alerts:     alerts,
		Pagination: paginator.NewPaginator(page, total, len(alerts)),
	}, nil
}

func (s *alertService) Update(ctx context.Context, id uuid.UUID, req domain.UpdateAlertRequest) (*domain.Alert, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}

	a, err := s.alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	caller, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.CreatedBy != userID && !caller.Role.CanModerate() {
		return nil, e.ErrForbidden
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("parse category_id: %w", e.ErrInvalidInput)
		}
		if _, err := s.categories.Get(ctx, categoryID); err != nil {
			return nil, err
		}
		a.CategoryID = categoryID
	}
	if req.Severity != nil {
		a.Severity = *req.Severity
	}
	if req.Address != nil {
		a.Address = *req.Address
	}
	if req.IncidentAt != nil {
		a.IncidentAt = *req.IncidentAt
	}
	a.UpdatedBy = &userID

	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *alertService) Moderate(ctx context.Context, id uuid.UUID, req domain.ModerateAlertRequest) error {
	a, err := s.alerts.Get(ctx, id)
	if err != nil {
		return err
	}

	if req.Status != nil {
		a.Status = *req.Status
		if a.Status == domain.AlertResolved && a.ResolvedAt == nil {
			now := time.Now().UTC()
			a.ResolvedAt = &now
		}
	}
	if req.IsVerified != nil {
		a.IsVerified = *req.IsVerified
	}

	return s.alerts.Update(ctx, a)
}

func (s *alertService) Nearby(ctx context.Context, req domain.NearbyRequest) (*domain.NearbyResponse, error) {
	center := geo.Point{Lat: req.Lat, Lng: req.Lng}
	if !center.Valid() {
		return nil, e.ErrInvalidCoordinates
	}
	if req.RadiusKM <= 0 {
		return nil, e.ErrInvalidRadius
	}

	minLat, maxLat, minLng, maxLng := boundingBox(center, req.RadiusKM)

	candidates, err := s.alerts.ListActiveWithinBox(ctx, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.Alert, len(candidates))
	located := make([]geo.Located, 0, len(candidates))
	for _, a := range candidates {
		byID[a.ID] = a
		located = append(located, a.Located())
	}

	within, err := geo.Nearby(center, req.RadiusKM, located)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.NearbyAlert, 0, len(within))
	for _, l := range within {
		alerts = append(alerts, domain.NearbyAlert{
			Alert:      byID[l.ID],
			DistanceKM: l.DistanceKM,
		})
	}

	return &domain.NearbyResponse{
		Alerts:   alerts,
		Lat:      req.Lat,
		Lng:      req.Lng,
		RadiusKM: req.RadiusKM,
	}, nil
}

func (s *alertService) Vote(ctx context.Context, alertID uuid.UUID, req domain.VoteRequest) (*domain.VoteResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}

	if _, err := s.alerts.GetPublic(ctx, alertID); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	userVote := req.Vote

	existing, err := s.votes.Get(ctx, alertID, userID)
	switch {
	case err == nil && existing.Vote == req.Vote:
		// Same vote again toggles it off.
		if err := s.votes.Delete(ctx, alertID, userID); err != nil {
			return nil, err
		}
		userVote = ""
	case err == nil || errors.Is(err, e.ErrNotFound):
		v := &domain.AlertVote{AlertID: alertID, UserID: userID, Vote: req.Vote}
		if err := s.votes.Upsert(ctx, v); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	up, down, err := s.votes.Counts(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if err := s.alerts.SetVoteCounts(ctx, alertID, up, down); err != nil {
		return nil, err
	}

	return &domain.VoteResponse{
		Upvotes:   up,
		Downvotes: down,
		UserVote:  userVote,
	}, nil
}

func (s *alertService) Comment(ctx context.Context, alertID uuid.UUID, req domain.CreateCommentRequest) (*domain.AlertComment, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}

	if _, err := s.alerts.GetPublic(ctx, alertID); err != nil {
		return nil, err
	}

	caller, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	c := &domain.AlertComment{
		AlertID:  alertID,
		UserID:   userID,
		Username: caller.Username,
		Content:  req.Content,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parse parent_id: %w", e.ErrInvalidInput)
		}
		c.ParentID = &parentID
	}

	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *alertService) DeleteComment(ctx context.Context, alertID, commentID uuid.UUID, req domain.DeleteCommentRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}

	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AlertID != alertID {
		return e.Wrap("comment does not belong to alert", e.ErrNotFound)
	}

	caller, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if c.UserID != userID && !caller.Role.CanModerate() {
		return e.ErrForbidden
	}

	return s.comments.SoftDelete(ctx, commentID)
}

// boundingBox widens the query center into a lat/lng window the storage layer
// can filter on with plain comparisons. Longitude compresses toward the poles.
func boundingBox(center geo.Point, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	latDelta := radiusKm / kmPerDegreeLat

	lngScale := math.Cos(center.Lat * math.Pi / 180.0)
	lngDelta := 180.0
	if lngScale > 1e-9 {
		lngDelta = radiusKm / (kmPerDegreeLat * lngScale)
		if lngDelta > 180.0 {
			lngDelta = 180.0
		}
	}

	return center.Lat - latDelta, center.Lat + latDelta, center.Lng - lngDelta, center.Lng + lngDelta
}
