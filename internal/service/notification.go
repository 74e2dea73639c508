package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
	"github.com/sammiykay/community-alert/pkg/e"
)

type notificationService struct {
	notifications postgres.NotificationRepository
	devices       postgres.DeviceRepository
	users         postgres.UserRepository
	queue         NotificationQueue
	pushDisabled  bool
	logger        *slog.Logger
}

func NewNotificationService(
	notifications postgres.NotificationRepository,
	devices postgres.DeviceRepository,
	users postgres.UserRepository,
	queue NotificationQueue,
	pushDisabled bool,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		devices:       devices,
		users:         users,
		queue:         queue,
		pushDisabled:  pushDisabled,
		logger:        logger,
	}
}

// FanOut records a notification per eligible community member and queues the
// push deliveries. The reporter is never notified about their own alert.
func (s *notificationService) FanOut(ctx context.Context, alert *domain.Alert, community *domain.Community) error {
	recipients, err := s.users.ListCommunityRecipients(ctx, community.ID, domain.ChannelPush)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Security Alert: %s", alert.Title)
	if alert.IsCritical() {
		title = fmt.Sprintf("URGENT - %s", title)
	}

	var (
		records []*domain.Notification
		pushTo  []domain.User
	)
	for _, u := range recipients {
		if u.ID == alert.CreatedBy {
			continue
		}
		records = append(records, &domain.Notification{
			AlertID: alert.ID,
			UserID:  u.ID,
			Channel: domain.ChannelPush,
			Title:   title,
			Message: alert.Description,
		})
		pushTo = append(pushTo, u)
	}

	emailRecipients, err := s.users.ListCommunityRecipients(ctx, community.ID, domain.ChannelEmail)
	if err != nil {
		return err
	}
	for _, u := range emailRecipients {
		if u.ID == alert.CreatedBy {
			continue
		}
		records = append(records, &domain.Notification{
			AlertID: alert.ID,
			UserID:  u.ID,
			Channel: domain.ChannelEmail,
			Title:   title,
			Message: alert.Description,
		})
	}

	if len(records) == 0 {
		s.logger.Debug("fan-out skipped, no recipients",
			slog.String("alert_id", alert.ID.String()),
			slog.String("community_id", community.ID.String()))
		return nil
	}

	if err := s.notifications.CreateBatch(ctx, records); err != nil {
		return err
	}

	if s.pushDisabled {
		s.logger.Info("push delivery disabled, notifications recorded only",
			slog.String("alert_id", alert.ID.String()),
			slog.Int("recorded", len(records)))
		return nil
	}

	idsByUser := make(map[uuid.UUID][]uuid.UUID, len(pushTo))
	for _, n := range records {
		if n.Channel == domain.ChannelPush {
			idsByUser[n.UserID] = append(idsByUser[n.UserID], n.ID)
		}
	}

	enqueued := 0
	for _, u := range pushTo {
		devices, err := s.devices.ListActive(ctx, u.ID)
		if err != nil {
			s.logger.Warn("device lookup failed",
				slog.String("user_id", u.ID.String()),
				slog.Any("error", err))
			continue
		}
		tokens := make([]string, 0, len(devices))
		for _, d := range devices {
			tokens = append(tokens, d.Token)
		}

		payload := domain.PushPayload{
			NotificationIDs: idsByUser[u.ID],
			UserID:          u.ID,
			DeviceTokens:    tokens,
			AlertID:         alert.ID,
			Title:           title,
			Message:         alert.Description,
			Severity:        alert.Severity,
			CommunityName:   community.Name,
			EnqueuedAt:      time.Now().UTC(),
		}
		if err := s.queue.Enqueue(ctx, payload); err != nil {
			s.logger.Error("push enqueue failed",
				slog.String("user_id", u.ID.String()),
				slog.Any("error", err))
			continue
		}
		enqueued++
	}

	s.logger.Info("fan-out complete",
		slog.String("alert_id", alert.ID.String()),
		slog.String("community", community.Name),
		slog.Int("recorded", len(records)),
		slog.Int("enqueued", enqueued))

	return nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.ListByUser(ctx, userID, limit)
}

func (s *notificationService) RegisterDevice(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}

	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	platform := req.Platform
	if platform == "" {
		platform = "web"
	}

	d := &domain.Device{
		UserID:   userID,
		Token:    req.Token,
		Platform: platform,
		Name:     req.Name,
	}
	if err := s.devices.Upsert(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *notificationService) UnregisterDevice(ctx context.Context, req domain.UnregisterDeviceRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return fmt.Errorf("parse user_id: %w", e.ErrInvalidInput)
	}
	return s.devices.Delete(ctx, userID, req.Token)
}

func (s *notificationService) ListDevices(ctx context.Context, userID uuid.UUID) ([]domain.Device, error) {
	return s.devices.ListActive(ctx, userID)
}
