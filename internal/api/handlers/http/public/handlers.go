package public

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/paginator"
	"github.com/sammiykay/community-alert/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go -package=mocks
type Alerts interface {
	Create(ctx context.Context, req domain.CreateAlertRequest) (*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.AlertDetail, error)
	List(ctx context.Context, filter domain.AlertFilter, page paginator.PaginateQuery) (*domain.ListAlertsResponse, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateAlertRequest) (*domain.Alert, error)
	Nearby(ctx context.Context, req domain.NearbyRequest) (*domain.NearbyResponse, error)
	Vote(ctx context.Context, alertID uuid.UUID, req domain.VoteRequest) (*domain.VoteResponse, error)
	Comment(ctx context.Context, alertID uuid.UUID, req domain.CreateCommentRequest) (*domain.AlertComment, error)
	DeleteComment(ctx context.Context, alertID, commentID uuid.UUID, req domain.DeleteCommentRequest) error
}

type Users interface {
	Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.UserProfile, error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req domain.UpdateProfileRequest) (*domain.UserProfile, error)
}

type Communities interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Community, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error)
}

type Categories interface {
	List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error)
}

type Notifications interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error)
	RegisterDevice(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error)
	UnregisterDevice(ctx context.Context, req domain.UnregisterDeviceRequest) error
	ListDevices(ctx context.Context, userID uuid.UUID) ([]domain.Device, error)
}

type Handler struct {
	logger        *slog.Logger
	Alerts        Alerts
	Users         Users
	Communities   Communities
	Categories    Categories
	Notifications Notifications
}

func NewHandler(
	logger *slog.Logger,
	alerts Alerts,
	users Users,
	communities Communities,
	categories Categories,
	notifications Notifications,
) *Handler {
	return &Handler{
		logger:        logger,
		Alerts:        alerts,
		Users:         users,
		Communities:   communities,
		Categories:    categories,
		Notifications: notifications,
	}
}

func (h *Handler) PublicUserRegister(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicUserRegister", slog.String("remote", r.RemoteAddr))

	var req domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	profile, err := h.Users.Register(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("user registered", slog.String("user_id", profile.ID.String()))
	h.writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) PublicUserProfile(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicUserProfile", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.Users.Profile(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) PublicUserUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicUserUpdate", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	profile, err := h.Users.UpdateProfile(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) PublicAlertCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertCreate", slog.String("remote", r.RemoteAddr))

	var req domain.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	alert, err := h.Alerts.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alert created",
		slog.String("alert_id", alert.ID.String()),
		slog.String("severity", string(alert.Severity)))
	h.writeJSON(w, http.StatusCreated, alert)
}

func (h *Handler) PublicAlertList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertList", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	q := r.URL.Query()

	filter := domain.AlertFilter{
		Severity: domain.AlertSeverity(q.Get("severity")),
		Status:   domain.AlertStatus(q.Get("status")),
		Search:   q.Get("search"),
	}
	if s := q.Get("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if s := q.Get("community_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid community_id"})
			return
		}
		filter.CommunityID = &id
	}

	page := paginator.PaginateQuery{
		Page:  parseInt(q.Get("page"), 1),
		Limit: parseInt(q.Get("limit"), 20),
	}

	resp, err := h.Alerts.List(r.Context(), filter, page)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) PublicAlertGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.Alerts.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) PublicAlertUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertUpdate", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	alert, err := h.Alerts.Update(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) PublicAlertNearby(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertNearby", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	q := r.URL.Query()

	var lat, lng, radius float64
	radiusSet := false
	if s := q.Get("radius_km"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid radius_km"})
			return
		}
		radius = v
		radiusSet = true
	}

	switch {
	case q.Get("lat") != "" || q.Get("lng") != "":
		var errLat, errLng error
		lat, errLat = strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng = strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
			return
		}
		if !radiusSet {
			radius = 5.0
		}
	case q.Get("user_id") != "":
		// No explicit center: search around the caller's stored location.
		userID, err := uuid.Parse(q.Get("user_id"))
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
			return
		}
		profile, err := h.Users.Profile(r.Context(), userID)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		p, ok := profile.Location()
		if !ok {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user location is not set"})
			return
		}
		lat, lng = p.Lat, p.Lng
		if !radiusSet {
			radius = profile.NotificationRadius
		}
	default:
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng or user_id are required"})
		return
	}

	resp, err := h.Alerts.Nearby(r.Context(), domain.NearbyRequest{Lat: lat, Lng: lng, RadiusKM: radius})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("nearby search done",
		slog.Float64("lat", lat),
		slog.Float64("lng", lng),
		slog.Float64("radius_km", radius),
		slog.Int("found", len(resp.Alerts)))
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) PublicAlertVote(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertVote", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.Alerts.Vote(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) PublicAlertComment(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertComment", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	var req domain.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	comment, err := h.Alerts.Comment(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) PublicAlertCommentDelete(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicAlertCommentDelete", slog.String("remote", r.RemoteAddr))

	alertID, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := h.parseID(w, r, "comment_id")
	if !ok {
		return
	}

	var req domain.DeleteCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Alerts.DeleteComment(r.Context(), alertID, commentID, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PublicCommunityList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicCommunityList", slog.String("remote", r.RemoteAddr))

	communities, err := h.Communities.List(r.Context(), false)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"communities": communities})
}

func (h *Handler) PublicCommunityGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicCommunityGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	community, err := h.Communities.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, community)
}

func (h *Handler) PublicCategoryList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicCategoryList", slog.String("remote", r.RemoteAddr))

	categories, err := h.Categories.List(r.Context(), false)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) PublicNotificationList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicNotificationList", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)

	notifications, err := h.Notifications.ListByUser(r.Context(), id, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) PublicDeviceRegister(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicDeviceRegister", slog.String("remote", r.RemoteAddr))

	var req domain.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	device, err := h.Notifications.RegisterDevice(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("device registered",
		slog.String("user_id", req.UserID),
		slog.String("platform", device.Platform))
	h.writeJSON(w, http.StatusCreated, device)
}

func (h *Handler) PublicDeviceUnregister(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicDeviceUnregister", slog.String("remote", r.RemoteAddr))

	var req domain.UnregisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Notifications.UnregisterDevice(r.Context(), req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PublicDeviceList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("PublicDeviceList", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r, "id")
	if !ok {
		return
	}

	devices, err := h.Notifications.ListDevices(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	l := h.log(r)

	idStr := chi.URLParam(r, name)
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
