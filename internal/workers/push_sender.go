package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sammiykay/community-alert/internal/config"
	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/internal/redis"
	"github.com/sammiykay/community-alert/internal/storage/postgres"
	"github.com/sammiykay/community-alert/pkg/e"
)

// PushSender drains the notification queue and posts payloads to the push
// gateway. Delivery past the gateway is not this service's concern.
type PushSender struct {
	logger        *slog.Logger
	cfg           config.PushConfig
	queue         *redis.NotificationQueue
	notifications postgres.NotificationRepository
	http          *http.Client
}

func NewPushSender(
	logger *slog.Logger,
	cfg config.PushConfig,
	q *redis.NotificationQueue,
	notifications postgres.NotificationRepository,
) *PushSender {
	return &PushSender{
		logger:        logger,
		cfg:           cfg,
		queue:         q,
		notifications: notifications,
		http:          &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *PushSender) Run(ctx context.Context) {
	s.logger.Info("pushSender STARTED", slog.String("gateway", s.cfg.GatewayURL))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pushSender STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		payload, err := s.queue.BRPop(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			s.logger.Error("BRPop failed", slog.Any("error", err))
			time.Sleep(500 * time.Millisecond)
			continue
		}

		s.logger.Info("sending push",
			slog.String("user_id", payload.UserID.String()),
			slog.String("alert_id", payload.AlertID.String()))
		s.sendWithRetry(ctx, payload)
	}
}

func (s *PushSender) sendWithRetry(ctx context.Context, p domain.PushPayload) {
	const maxRetries = 3

	body, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("marshal push payload failed", slog.String("error", err.Error()))
		return
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			s.logger.Info("stop retries due to context cancel")
			return
		}

		externalID, err := s.post(ctx, body)
		if err == nil {
			s.markSent(ctx, p, externalID)
			return
		}

		s.logger.Warn("push delivery failed",
			slog.Int("attempt", attempt),
			slog.String("gateway", s.cfg.GatewayURL),
			slog.String("reason", err.Error()),
		)

		time.Sleep(time.Duration(attempt) * time.Second)
	}

	s.markFailed(ctx, p)
}

func (s *PushSender) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway responded %s", resp.Status)
	}

	var ack struct {
		MessageID string `json:"message_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		// The gateway accepted the batch; a missing ack id is not a failure.
		return "", nil
	}
	return ack.MessageID, nil
}

func (s *PushSender) markSent(ctx context.Context, p domain.PushPayload, externalID string) {
	if len(p.NotificationIDs) == 0 {
		return
	}
	if err := s.notifications.MarkSent(ctx, p.NotificationIDs, time.Now().UTC(), externalID); err != nil {
		s.logger.Error("mark sent failed",
			slog.String("user_id", p.UserID.String()),
			slog.Any("error", err))
	}
}

func (s *PushSender) markFailed(ctx context.Context, p domain.PushPayload) {
	if len(p.NotificationIDs) == 0 {
		return
	}
	if err := s.notifications.MarkFailed(ctx, p.NotificationIDs); err != nil {
		s.logger.Error("mark failed failed",
			slog.String("user_id", p.UserID.String()),
			slog.Any("error", err))
	}
}
