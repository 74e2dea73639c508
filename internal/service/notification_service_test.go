package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/service"

	mock_service "github.com/sammiykay/community-alert/internal/service/mocks"
)

type notificationDeps struct {
	notifications *mock_service.MockNotificationRepository
	devices       *mock_service.MockDeviceRepository
	users         *mock_service.MockUserRepository
	queue         *mock_service.MockNotificationQueue
}

func newNotificationService(ctrl *gomock.Controller, pushDisabled bool) (service.NotificationService, notificationDeps) {
	deps := notificationDeps{
		notifications: mock_service.NewMockNotificationRepository(ctrl),
		devices:       mock_service.NewMockDeviceRepository(ctrl),
		users:         mock_service.NewMockUserRepository(ctrl),
		queue:         mock_service.NewMockNotificationQueue(ctrl),
	}
	svc := service.NewNotificationService(
		deps.notifications,
		deps.devices,
		deps.users,
		deps.queue,
		pushDisabled,
		testLogger(),
	)
	return svc, deps
}

func TestNotificationService_FanOut_SkipsReporter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, false)

	reporterID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	neighborID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	communityID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	alert := &domain.Alert{
		ID:          uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Title:       "Break-in",
		Description: "Forced entry",
		Severity:    domain.SeverityHigh,
		CreatedBy:   reporterID,
	}
	community := &domain.Community{ID: communityID, Name: "Downtown"}

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelPush).
		Return([]domain.User{{ID: reporterID}, {ID: neighborID}}, nil).
		Times(1)

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelEmail).
		Return([]domain.User{{ID: reporterID}}, nil).
		Times(1)

	deps.notifications.EXPECT().
		CreateBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ns []*domain.Notification) error {
			if len(ns) != 1 {
				t.Fatalf("expected 1 record, got %d", len(ns))
			}
			if ns[0].UserID != neighborID {
				t.Fatalf("expected record for neighbor, got %s", ns[0].UserID)
			}
			if ns[0].Title != "Security Alert: Break-in" {
				t.Fatalf("unexpected title %q", ns[0].Title)
			}
			ns[0].ID = uuid.New()
			return nil
		}).
		Times(1)

	deps.devices.EXPECT().
		ListActive(gomock.Any(), neighborID).
		Return([]domain.Device{{Token: "tok-1"}}, nil).
		Times(1)

	deps.queue.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.PushPayload) error {
			if p.UserID != neighborID {
				t.Fatalf("enqueued for wrong user %s", p.UserID)
			}
			if len(p.DeviceTokens) != 1 || p.DeviceTokens[0] != "tok-1" {
				t.Fatalf("unexpected tokens %v", p.DeviceTokens)
			}
			if p.CommunityName != "Downtown" {
				t.Fatalf("unexpected community name %q", p.CommunityName)
			}
			return nil
		}).
		Times(1)

	if err := svc.FanOut(context.Background(), alert, community); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestNotificationService_FanOut_CriticalTitlePrefixed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, true)

	reporterID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	neighborID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	communityID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	alert := &domain.Alert{
		ID:          uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Title:       "Armed robbery",
		Description: "Suspects still in the area",
		Severity:    domain.SeverityCritical,
		CreatedBy:   reporterID,
	}
	community := &domain.Community{ID: communityID, Name: "Downtown"}

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelPush).
		Return([]domain.User{{ID: neighborID}}, nil).
		Times(1)

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelEmail).
		Return(nil, nil).
		Times(1)

	deps.notifications.EXPECT().
		CreateBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ns []*domain.Notification) error {
			if len(ns) != 1 {
				t.Fatalf("expected 1 record, got %d", len(ns))
			}
			if ns[0].Title != "URGENT - Security Alert: Armed robbery" {
				t.Fatalf("unexpected title %q", ns[0].Title)
			}
			return nil
		}).
		Times(1)

	if err := svc.FanOut(context.Background(), alert, community); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestNotificationService_FanOut_NoRecipients(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, false)

	reporterID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	communityID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	alert := &domain.Alert{ID: uuid.New(), CreatedBy: reporterID}
	community := &domain.Community{ID: communityID}

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelPush).
		Return([]domain.User{{ID: reporterID}}, nil).
		Times(1)

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelEmail).
		Return(nil, nil).
		Times(1)

	if err := svc.FanOut(context.Background(), alert, community); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestNotificationService_FanOut_PushDisabledRecordsOnly(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, true)

	neighborID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	communityID := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	alert := &domain.Alert{ID: uuid.New(), CreatedBy: uuid.New()}
	community := &domain.Community{ID: communityID}

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelPush).
		Return([]domain.User{{ID: neighborID}}, nil).
		Times(1)

	deps.users.EXPECT().
		ListCommunityRecipients(gomock.Any(), communityID, domain.ChannelEmail).
		Return(nil, nil).
		Times(1)

	deps.notifications.EXPECT().
		CreateBatch(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	// No device lookups, no enqueues.
	if err := svc.FanOut(context.Background(), alert, community); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestNotificationService_RegisterDevice_DefaultsPlatform(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, false)

	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.users.EXPECT().
		Get(gomock.Any(), userID).
		Return(&domain.User{ID: userID}, nil).
		Times(1)

	deps.devices.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *domain.Device) error {
			if d.Platform != "web" {
				t.Fatalf("expected default platform web, got %q", d.Platform)
			}
			return nil
		}).
		Times(1)

	_, err := svc.RegisterDevice(context.Background(), domain.RegisterDeviceRequest{
		UserID: userID.String(),
		Token:  "tok-1",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestNotificationService_ListByUser_ClampsLimit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, deps := newNotificationService(ctrl, false)

	userID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	deps.notifications.EXPECT().
		ListByUser(gomock.Any(), userID, 50).
		Return([]domain.Notification{}, nil).
		Times(2)

	if _, err := svc.ListByUser(context.Background(), userID, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.ListByUser(context.Background(), userID, 500); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
