package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/geo"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

type AlertStatus string

const (
	AlertActive      AlertStatus = "active"
	AlertResolved    AlertStatus = "resolved"
	AlertFalseAlarm  AlertStatus = "false_alarm"
	AlertUnderReview AlertStatus = "under_review"
)

// Alert is a reported security incident tied to a location. CommunityID is a
// weak reference resolved once at creation; boundary edits do not re-assign.
type Alert struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  uuid.UUID     `json:"category_id"`
	Severity    AlertSeverity `json:"severity"`
	Status      AlertStatus   `json:"status"`
	Lat         float64       `json:"lat"`
	Lng         float64       `json:"lng"`
	Address     string        `json:"address,omitempty"`
	CommunityID *uuid.UUID    `json:"community_id,omitempty"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	UpdatedBy   *uuid.UUID    `json:"updated_by,omitempty"`
	IncidentAt  time.Time     `json:"incident_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	ViewCount   int64         `json:"view_count"`
	Upvotes     int64         `json:"upvotes"`
	Downvotes   int64         `json:"downvotes"`
	IsPublic    bool          `json:"is_public"`
	IsVerified  bool          `json:"is_verified"`
}

func (a Alert) Location() geo.Point {
	return geo.Point{Lat: a.Lat, Lng: a.Lng}
}

func (a Alert) Located() geo.Located {
	return geo.Located{ID: a.ID, Point: a.Location(), CreatedAt: a.CreatedAt}
}

func (a Alert) IsCritical() bool {
	return a.Severity == SeverityCritical
}

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// AlertVote is a member's reliability vote; one per (alert, user).
type AlertVote struct {
	AlertID   uuid.UUID `json:"alert_id"`
	UserID    uuid.UUID `json:"user_id"`
	Vote      VoteType  `json:"vote"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertComment is a discussion entry; soft-deleted, never removed.
type AlertComment struct {
	ID        uuid.UUID  `json:"id"`
	AlertID   uuid.UUID  `json:"alert_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	IsDeleted bool       `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AlertDetail is an alert with its discussion attached.
type AlertDetail struct {
	Alert
	Comments []AlertComment `json:"comments"`
}

// NearbyAlert is an alert annotated with the distance from the query center.
type NearbyAlert struct {
	Alert
	DistanceKM float64 `json:"distance_km"`
}
