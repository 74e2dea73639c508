package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/pkg/paginator"
)

type CreateAlertRequest struct {
	UserID      string        `json:"user_id" validate:"required,uuid"`
	Title       string        `json:"title" validate:"required,max=200"`
	Description string        `json:"description" validate:"required"`
	CategoryID  string        `json:"category_id" validate:"required,uuid"`
	Severity    AlertSeverity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Lat         float64       `json:"lat" validate:"lat"`
	Lng         float64       `json:"lng" validate:"lng"`
	Address     string        `json:"address" validate:"max=300"`
	IncidentAt  time.Time     `json:"incident_at" validate:"required"`
	IsPublic    *bool         `json:"is_public"`
}

type UpdateAlertRequest struct {
	UserID      string         `json:"user_id" validate:"required,uuid"`
	Title       *string        `json:"title" validate:"omitempty,max=200"`
	Description *string        `json:"description"`
	CategoryID  *string        `json:"category_id" validate:"omitempty,uuid"`
	Severity    *AlertSeverity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Address     *string        `json:"address" validate:"omitempty,max=300"`
	IncidentAt  *time.Time     `json:"incident_at"`
}

// ModerateAlertRequest is the admin status transition; plain last-write-wins.
type ModerateAlertRequest struct {
	Status     *AlertStatus `json:"status" validate:"omitempty,oneof=active resolved false_alarm under_review"`
	IsVerified *bool        `json:"is_verified"`
}

// AlertFilter narrows the public listing. Zero values mean "no filter".
type AlertFilter struct {
	CategoryID  *uuid.UUID
	CommunityID *uuid.UUID
	Severity    AlertSeverity
	Status      AlertStatus
	Search      string
}

type ListAlertsResponse struct {
	Alerts     []Alert             `json:"alerts"`
	Pagination paginator.Paginator `json:"pagination"`
}

type VoteRequest struct {
	UserID string   `json:"user_id" validate:"required,uuid"`
	Vote   VoteType `json:"vote" validate:"required,oneof=up down"`
}

// VoteResponse reports the new counters and the caller's resulting vote
// (empty when the vote was removed by toggling).
type VoteResponse struct {
	Upvotes   int64    `json:"upvotes"`
	Downvotes int64    `json:"downvotes"`
	UserVote  VoteType `json:"user_vote,omitempty"`
}

type CreateCommentRequest struct {
	UserID   string  `json:"user_id" validate:"required,uuid"`
	Content  string  `json:"content" validate:"required,max=5000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// DeleteCommentRequest carries the acting user; only the author or a
// moderator may remove a comment.
type DeleteCommentRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type NearbyRequest struct {
	Lat      float64 `json:"lat" validate:"lat"`
	Lng      float64 `json:"lng" validate:"lng"`
	RadiusKM float64 `json:"radius_km" validate:"required,radius_km"`
}

type NearbyResponse struct {
	Alerts   []NearbyAlert `json:"alerts"`
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	RadiusKM float64       `json:"radius_km"`
}
