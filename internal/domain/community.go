package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/geo"
)

// Community is an administratively defined circular boundary that groups
// alerts and members. Communities are never hard-deleted, only disabled.
type Community struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	RadiusKM    float64   `json:"radius_km"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c Community) Center() geo.Point {
	return geo.Point{Lat: c.Lat, Lng: c.Lng}
}

func (c Community) Zone() geo.Zone {
	return geo.Zone{ID: c.ID, Center: c.Center(), RadiusKM: c.RadiusKM}
}

// CommunityDetail adds aggregate counts for detail pages.
type CommunityDetail struct {
	Community
	MemberCount int64 `json:"member_count"`
	AlertCount  int64 `json:"alert_count"`
	ActiveCount int64 `json:"active_alert_count"`
}

type CreateCommunityRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Lat         float64 `json:"lat" validate:"lat"`
	Lng         float64 `json:"lng" validate:"lng"`
	RadiusKM    float64 `json:"radius_km" validate:"required,radius_km"`
}

type UpdateCommunityRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Lat         *float64 `json:"lat" validate:"omitempty,lat"`
	Lng         *float64 `json:"lng" validate:"omitempty,lng"`
	RadiusKM    *float64 `json:"radius_km" validate:"omitempty,radius_km"`
	IsActive    *bool    `json:"is_active"`
}
