package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	ChannelPush  NotificationChannel = "push"
	ChannelEmail NotificationChannel = "email"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationDelivered NotificationStatus = "delivered"
)

// Notification tracks one fan-out attempt to one user. Transport past the
// configured gateway is outside this service.
type Notification struct {
	ID         uuid.UUID           `json:"id"`
	AlertID    uuid.UUID           `json:"alert_id"`
	UserID     uuid.UUID           `json:"user_id"`
	Channel    NotificationChannel `json:"channel"`
	Status     NotificationStatus  `json:"status"`
	Title      string              `json:"title"`
	Message    string              `json:"message"`
	CreatedAt  time.Time           `json:"created_at"`
	SentAt     *time.Time          `json:"sent_at,omitempty"`
	ExternalID string              `json:"external_id,omitempty"`
}

// Device is a push registration. Re-registering an existing token for the
// same user refreshes it instead of duplicating.
type Device struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Token      string    `json:"token"`
	Platform   string    `json:"platform"`
	Name       string    `json:"name,omitempty"`
	IsActive   bool      `json:"is_active"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterDeviceRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"omitempty,oneof=web android ios"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type UnregisterDeviceRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Token  string `json:"token" validate:"required,max=512"`
}

// PushPayload is what the sender posts to the push gateway for delivery.
type PushPayload struct {
	NotificationIDs []uuid.UUID   `json:"notification_ids"`
	UserID          uuid.UUID     `json:"user_id"`
	DeviceTokens    []string      `json:"device_tokens,omitempty"`
	AlertID         uuid.UUID     `json:"alert_id"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	Severity        AlertSeverity `json:"severity"`
	CommunityName   string        `json:"community_name,omitempty"`
	EnqueuedAt      time.Time     `json:"enqueued_at"`
}
