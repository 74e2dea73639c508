package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/geo"
)

type UserRole string

const (
	RoleMember    UserRole = "member"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// User is a registered member. Location is optional; notification fields
// control fan-out eligibility.
type User struct {
	ID                 uuid.UUID   `json:"id"`
	Username           string      `json:"username"`
	Email              string      `json:"email"`
	PasswordHash       string      `json:"-"`
	Phone              string      `json:"phone,omitempty"`
	Role               UserRole    `json:"role"`
	Lat                *float64    `json:"lat,omitempty"`
	Lng                *float64    `json:"lng,omitempty"`
	EmailNotifications bool        `json:"email_notifications"`
	PushNotifications  bool        `json:"push_notifications"`
	NotificationRadius float64     `json:"notification_radius_km"`
	CommunityIDs       []uuid.UUID `json:"communities,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Location returns the user's point and whether one is set.
func (u User) Location() (geo.Point, bool) {
	if u.Lat == nil || u.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *u.Lat, Lng: *u.Lng}, true
}

type RegisterUserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=150"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=128"`
	Phone    string   `json:"phone" validate:"omitempty,max=20"`
	Lat      *float64 `json:"lat" validate:"omitempty,lat"`
	Lng      *float64 `json:"lng" validate:"omitempty,lng"`
}

type UpdateProfileRequest struct {
	Phone              *string  `json:"phone" validate:"omitempty,max=20"`
	Lat                *float64 `json:"lat" validate:"omitempty,lat"`
	Lng                *float64 `json:"lng" validate:"omitempty,lng"`
	EmailNotifications *bool    `json:"email_notifications"`
	PushNotifications  *bool    `json:"push_notifications"`
	NotificationRadius *float64 `json:"notification_radius_km" validate:"omitempty,radius_km"`
}

// UserProfile is the profile view returned to the member.
type UserProfile struct {
	User
	AlertsCreated int64 `json:"alerts_created"`
	AlertsVoted   int64 `json:"alerts_voted"`
}
