package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/service"
	"github.com/sammiykay/community-alert/pkg/e"
	"github.com/sammiykay/community-alert/pkg/paginator"

	mock_service "github.com/sammiykay/community-alert/internal/service/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type alertDeps struct {
	alerts      *mock_service.MockAlertRepository
	votes       *mock_service.MockVoteRepository
	comments    *mock_service.MockCommentRepository
	users       *mock_service.MockUserRepository
	categories  *mock_service.MockCategoryRepository
	communities *mock_service.MockCommunityService
	notifier    *mock_service.MockNotificationService
}

func newAlertService(ctrl *gomock.Controller) (service.AlertService, alertDeps) {
	deps := alertDeps{
		alerts:      mock_service.NewMockAlertRepository(ctrl),
		votes:       mock_service.NewMockVoteRepository(ctrl),
		comments:    mock_service.NewMockCommentRepository(ctrl),
		users:       mock_service.NewMockUserRepository(ctrl),
		categories:  mock_service.NewMockCategoryRepository(ctrl),
		communities: mock_service.NewMockCommunityService(ctrl),
		notifier:    mock_service.NewMockNotificationService(ctrl),
	}
	svc := service.NewAlertService(
		deps.alerts,
		deps.votes,
		deps.comments,
		deps.users,
		deps.categories,
		deps.communities,
		deps.notifier,
		testLogger(),
	)
	return svc, deps
}

func TestAlertService_Create_InsideCommunity_FansOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	categoryID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	community := domain.Community{
		ID:       uuid.MustParse("00000000-0000-0000-0000-000000000003"),
		Name:     "Downtown",
		Lat:      6.52,
		Lng:      3.37,
		RadiusKM: 5,
		IsActive: true,
	}

	req := domain.CreateAlertRequest{
		UserID:      userID.String(),
		Title:       "Break-in reported",
		Description: "Forced entry on Adeola street",
		CategoryID:  categoryID.String(),
		Lat:         6.521,
		Lng:         3.372,
		IncidentAt:  time.Date(2026, 2, 3, 21, 0, 0, 0, time.UTC),
	}

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Role: domain.RoleMember}, nil).
		Times(1)

	deps.categories.EXPECT().
		Get(gomock.Any(), categoryID).
		Return(&domain.AlertCategory{ID: categoryID, Name: "Theft", IsActive: true}, nil).
		Times(1)

	deps.communities.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(&community, nil).
		Times(1)

	deps.alerts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			if a.Severity != domain.SeverityMedium {
				t.Fatalf("expected default severity medium, got %s", a.Severity)
			}
			if a.Status != domain.AlertActive {
				t.Fatalf("expected status active, got %s", a.Status)
			}
			if !a.IsPublic {
				t.Fatalf("expected default is_public true")
			}
			if a.CommunityID == nil || *a.CommunityID != community.ID {
				t.Fatalf("expected community %s assigned, got %v", community.ID, a.CommunityID)
			}
			return nil
		}).
		Times(1)

	deps.notifier.EXPECT().
		FanOut(gomock.Any(), gomock.Any(), &community).
		Return(nil).
		Times(1)

	got, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.CreatedBy != userID {
		t.Fatalf("expected created_by %s, got %s", userID, got.CreatedBy)
	}
}

func TestAlertService_Create_OutsideAnyCommunity_NoFanOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	categoryID := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	req := domain.CreateAlertRequest{
		UserID:      userID.String(),
		Title:       "Suspicious vehicle",
		Description: "Parked for days",
		CategoryID:  categoryID.String(),
		Severity:    domain.SeverityLow,
		Lat:         40.0,
		Lng:         -70.0,
		IncidentAt:  time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
	}

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.categories.EXPECT().
		Get(gomock.Any(), categoryID).
		Return(&domain.AlertCategory{ID: categoryID, IsActive: true}, nil).
		Times(1)

	deps.communities.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(1)

	deps.alerts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	got, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.CommunityID != nil {
		t.Fatalf("expected no community, got %v", got.CommunityID)
	}
	if got.Severity != domain.SeverityLow {
		t.Fatalf("expected severity low, got %s", got.Severity)
	}
}

func TestAlertService_Create_DisabledCategoryRejected(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	categoryID := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.categories.EXPECT().
		Get(gomock.Any(), categoryID).
		Return(&domain.AlertCategory{ID: categoryID, IsActive: false}, nil).
		Times(1)

	_, err := svc.Create(context.Background(), domain.CreateAlertRequest{
		UserID:     userID.String(),
		Title:      "Test",
		CategoryID: categoryID.String(),
		IncidentAt: time.Now(),
	})
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAlertService_Vote_SameVoteTogglesOff(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.votes.EXPECT().
		Get(gomock.Any(), alertID, userID).
		Return(&domain.AlertVote{AlertID: alertID, UserID: userID, Vote: domain.VoteUp}, nil).
		Times(1)

	deps.votes.EXPECT().
		Delete(gomock.Any(), alertID, userID).
		Return(nil).
		Times(1)

	deps.votes.EXPECT().
		Counts(gomock.Any(), alertID).
		Return(int64(3), int64(1), nil).
		Times(1)

	deps.alerts.EXPECT().
		SetVoteCounts(gomock.Any(), alertID, int64(3), int64(1)).
		Return(nil).
		Times(1)

	got, err := svc.Vote(context.Background(), alertID, domain.VoteRequest{
		UserID: userID.String(),
		Vote:   domain.VoteUp,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := &domain.VoteResponse{Upvotes: 3, Downvotes: 1, UserVote: ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected response: got=%+v want=%+v", got, want)
	}
}

func TestAlertService_Vote_OppositeVoteReplaces(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.votes.EXPECT().
		Get(gomock.Any(), alertID, userID).
		Return(&domain.AlertVote{AlertID: alertID, UserID: userID, Vote: domain.VoteDown}, nil).
		Times(1)

	deps.votes.EXPECT().
		Upsert(gomock.Any(), &domain.AlertVote{AlertID: alertID, UserID: userID, Vote: domain.VoteUp}).
		Return(nil).
		Times(1)

	deps.votes.EXPECT().
		Counts(gomock.Any(), alertID).
		Return(int64(5), int64(0), nil).
		Times(1)

	deps.alerts.EXPECT().
		SetVoteCounts(gomock.Any(), alertID, int64(5), int64(0)).
		Return(nil).
		Times(1)

	got, err := svc.Vote(context.Background(), alertID, domain.VoteRequest{
		UserID: userID.String(),
		Vote:   domain.VoteUp,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.UserVote != domain.VoteUp {
		t.Fatalf("expected user_vote up, got %q", got.UserVote)
	}
}

func TestAlertService_Vote_FirstVoteInserted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.votes.EXPECT().
		Get(gomock.Any(), alertID, userID).
		Return(nil, e.Wrap("postgres.vote.Get", e.ErrNotFound)).
		Times(1)

	deps.votes.EXPECT().
		Upsert(gomock.Any(), &domain.AlertVote{AlertID: alertID, UserID: userID, Vote: domain.VoteDown}).
		Return(nil).
		Times(1)

	deps.votes.EXPECT().
		Counts(gomock.Any(), alertID).
		Return(int64(0), int64(1), nil).
		Times(1)

	deps.alerts.EXPECT().
		SetVoteCounts(gomock.Any(), alertID, int64(0), int64(1)).
		Return(nil).
		Times(1)

	got, err := svc.Vote(context.Background(), alertID, domain.VoteRequest{
		UserID: userID.String(),
		Vote:   domain.VoteDown,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	want := &domain.VoteResponse{Upvotes: 0, Downvotes: 1, UserVote: domain.VoteDown}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected response: got=%+v want=%+v", got, want)
	}
}

func TestAlertService_Nearby_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newAlertService(ctrl)

	_, err := svc.Nearby(context.Background(), domain.NearbyRequest{Lat: 91, Lng: 0, RadiusKM: 5})
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestAlertService_Nearby_NonPositiveRadius(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newAlertService(ctrl)

	for _, radius := range []float64{0, -1} {
		_, err := svc.Nearby(context.Background(), domain.NearbyRequest{Lat: 6.5, Lng: 3.3, RadiusKM: radius})
		if !errors.Is(err, e.ErrInvalidRadius) {
			t.Fatalf("radius %v: expected ErrInvalidRadius, got %v", radius, err)
		}
	}
}

func TestAlertService_Nearby_SortsByDistance(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	near := domain.Alert{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Lat: 0.01, Lng: 0}
	far := domain.Alert{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Lat: 0.05, Lng: 0}
	outside := domain.Alert{ID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Lat: 0.5, Lng: 0}

	deps.alerts.EXPECT().
		ListActiveWithinBox(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.Alert{far, outside, near}, nil).
		Times(1)

	got, err := svc.Nearby(context.Background(), domain.NearbyRequest{Lat: 0, Lng: 0, RadiusKM: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if len(got.Alerts) != 2 {
		t.Fatalf("expected 2 alerts within radius, got %d", len(got.Alerts))
	}
	if got.Alerts[0].ID != near.ID || got.Alerts[1].ID != far.ID {
		t.Fatalf("expected order [near far], got [%s %s]", got.Alerts[0].ID, got.Alerts[1].ID)
	}
	if got.Alerts[0].DistanceKM >= got.Alerts[1].DistanceKM {
		t.Fatalf("distances not ascending: %v >= %v", got.Alerts[0].DistanceKM, got.Alerts[1].DistanceKM)
	}
}

func TestAlertService_Nearby_DistanceTieNewestFirst(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	older := domain.Alert{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Lat:       0.01,
		Lng:       0,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := domain.Alert{
		ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Lat:       0.01,
		Lng:       0,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	deps.alerts.EXPECT().
		ListActiveWithinBox(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]domain.Alert{older, newer}, nil).
		Times(1)

	got, err := svc.Nearby(context.Background(), domain.NearbyRequest{Lat: 0, Lng: 0, RadiusKM: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got.Alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(got.Alerts))
	}
	if got.Alerts[0].ID != newer.ID {
		t.Fatalf("expected newer alert first on distance tie, got %s", got.Alerts[0].ID)
	}
}

func TestAlertService_Update_ForbiddenForNonOwner(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	ownerID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	otherID := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	deps.alerts.EXPECT().
		Get(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID, CreatedBy: ownerID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), otherID).
		Return(&domain.User{ID: otherID, Role: domain.RoleMember}, nil).
		Times(1)

	title := "edited"
	_, err := svc.Update(context.Background(), alertID, domain.UpdateAlertRequest{
		UserID: otherID.String(),
		Title:  &title,
	})
	if !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAlertService_Update_ModeratorMayEditOthers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	ownerID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	modID := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	deps.alerts.EXPECT().
		Get(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID, CreatedBy: ownerID, Title: "old"}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), modID).
		Return(&domain.User{ID: modID, Role: domain.RoleModerator}, nil).
		Times(1)

	deps.alerts.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	title := "corrected title"
	got, err := svc.Update(context.Background(), alertID, domain.UpdateAlertRequest{
		UserID: modID.String(),
		Title:  &title,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Title != title {
		t.Fatalf("expected title %q, got %q", title, got.Title)
	}
	if got.UpdatedBy == nil || *got.UpdatedBy != modID {
		t.Fatalf("expected updated_by %s, got %v", modID, got.UpdatedBy)
	}
}

func TestAlertService_Moderate_ResolvedSetsTimestamp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	deps.alerts.EXPECT().
		Get(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID, Status: domain.AlertActive}, nil).
		Times(1)

	deps.alerts.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			if a.Status != domain.AlertResolved {
				t.Fatalf("expected status resolved, got %s", a.Status)
			}
			if a.ResolvedAt == nil {
				t.Fatalf("expected resolved_at set")
			}
			return nil
		}).
		Times(1)

	status := domain.AlertResolved
	if err := svc.Moderate(context.Background(), alertID, domain.ModerateAlertRequest{Status: &status}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_Get_IncrementsViews(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID, ViewCount: 7}, nil).
		Times(1)

	deps.alerts.EXPECT().
		IncrementViews(gomock.Any(), alertID).
		Return(nil).
		Times(1)

	deps.comments.EXPECT().
		ListByAlert(gomock.Any(), alertID).
		Return([]domain.AlertComment{}, nil).
		Times(1)

	got, err := svc.Get(context.Background(), alertID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ViewCount != 8 {
		t.Fatalf("expected view count 8, got %d", got.ViewCount)
	}
}

func TestAlertService_Comment_AttachesCallerUsername(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Username: "ade"}, nil).
		Times(1)

	deps.comments.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *domain.AlertComment) error {
			if c.Username != "ade" {
				t.Fatalf("expected username ade, got %q", c.Username)
			}
			if c.Content != "stay safe" {
				t.Fatalf("unexpected content %q", c.Content)
			}
			return nil
		}).
		Times(1)

	_, err := svc.Comment(context.Background(), alertID, domain.CreateCommentRequest{
		UserID:  userID.String(),
		Content: "stay safe",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_DeleteComment_AuthorMayRemove(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	commentID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.comments.EXPECT().
		Get(gomock.Any(), commentID).
		Return(&domain.AlertComment{ID: commentID, AlertID: alertID, UserID: userID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Role: domain.RoleMember}, nil).
		Times(1)

	deps.comments.EXPECT().
		SoftDelete(gomock.Any(), commentID).
		Return(nil).
		Times(1)

	err := svc.DeleteComment(context.Background(), alertID, commentID, domain.DeleteCommentRequest{
		UserID: userID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_DeleteComment_NonAuthorForbidden(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	commentID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	author := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	caller := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	deps.comments.EXPECT().
		Get(gomock.Any(), commentID).
		Return(&domain.AlertComment{ID: commentID, AlertID: alertID, UserID: author}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), caller).
		Return(&domain.User{ID: caller, Role: domain.RoleMember}, nil).
		Times(1)

	err := svc.DeleteComment(context.Background(), alertID, commentID, domain.DeleteCommentRequest{
		UserID: caller.String(),
	})
	if !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

func TestAlertService_DeleteComment_ModeratorMayRemove(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	commentID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	author := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	mod := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	deps.comments.EXPECT().
		Get(gomock.Any(), commentID).
		Return(&domain.AlertComment{ID: commentID, AlertID: alertID, UserID: author}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), mod).
		Return(&domain.User{ID: mod, Role: domain.RoleModerator}, nil).
		Times(1)

	deps.comments.EXPECT().
		SoftDelete(gomock.Any(), commentID).
		Return(nil).
		Times(1)

	err := svc.DeleteComment(context.Background(), alertID, commentID, domain.DeleteCommentRequest{
		UserID: mod.String(),
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestAlertService_DeleteComment_WrongAlertNotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherAlert := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	commentID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.comments.EXPECT().
		Get(gomock.Any(), commentID).
		Return(&domain.AlertComment{ID: commentID, AlertID: otherAlert, UserID: userID}, nil).
		Times(1)

	err := svc.DeleteComment(context.Background(), alertID, commentID, domain.DeleteCommentRequest{
		UserID: userID.String(),
	})
	if !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestAlertService_List_PaginationMetadata(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	deps.alerts.EXPECT().
		List(gomock.Any(), gomock.Any(), paginator.PaginateQuery{Page: 2, Limit: 10}).
		Return(make([]domain.Alert, 10), int64(25), nil).
		Times(1)

	resp, err := svc.List(context.Background(), domain.AlertFilter{}, paginator.PaginateQuery{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	p := resp.Pagination
	if p.Total != 25 || p.Count != 10 || p.PerPage != 10 || p.CurrentPage != 2 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrevious {
		t.Fatalf("expected middle page to have neighbours: %+v", p)
	}
}

func TestAlertService_Vote_StorageErrorPropagated(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newAlertService(ctrl)

	alertID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	wantErr := errors.New("boom")

	deps.alerts.EXPECT().
		GetPublic(gomock.Any(), alertID).
		Return(&domain.Alert{ID: alertID}, nil).
		Times(1)

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.votes.EXPECT().
		Get(gomock.Any(), alertID, userID).
		Return(nil, wantErr).
		Times(1)

	_, err := svc.Vote(context.Background(), alertID, domain.VoteRequest{
		UserID: userID.String(),
		Vote:   domain.VoteUp,
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected err=%v got=%v", wantErr, err)
	}
}
