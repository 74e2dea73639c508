package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/domain"
	"github.com/sammiykay/community-alert/pkg/validator"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go -package=mocks
type Communities interface {
	Create(ctx context.Context, req domain.CreateCommunityRequest) (uuid.UUID, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Community, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.CommunityDetail, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateCommunityRequest) error
	Disable(ctx context.Context, id uuid.UUID) error
}

type Categories interface {
	Create(ctx context.Context, req domain.CreateCategoryRequest) (uuid.UUID, error)
	List(ctx context.Context, includeInactive bool) ([]domain.AlertCategory, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdateCategoryRequest) error
}

type Moderator interface {
	Moderate(ctx context.Context, id uuid.UUID, req domain.ModerateAlertRequest) error
}

type StatsGetter interface {
	System(ctx context.Context) (*domain.SystemStats, error)
}

type Handler struct {
	logger      *slog.Logger
	Communities Communities
	Categories  Categories
	Moderator   Moderator
	Stats       StatsGetter
}

func NewHandler(logger *slog.Logger, communities Communities, categories Categories, moderator Moderator, stats StatsGetter) *Handler {
	return &Handler{
		logger:      logger,
		Communities: communities,
		Categories:  categories,
		Moderator:   moderator,
		Stats:       stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) AdminCommunityCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCommunityCreate", slog.String("remote", r.RemoteAddr))

	var req domain.CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l.Info("creating community",
		slog.String("name", req.Name),
		slog.Float64("lat", req.Lat),
		slog.Float64("lng", req.Lng),
		slog.Float64("radius_km", req.RadiusKM),
	)

	id, err := h.Communities.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("community created", slog.String("id", id.String()))
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) AdminCommunityList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCommunityList", slog.String("query", r.URL.RawQuery), slog.String("remote", r.RemoteAddr))

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	communities, err := h.Communities.List(r.Context(), includeInactive)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"communities": communities})
}

func (h *Handler) AdminCommunityGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCommunityGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r)
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

func (h *Handler) AdminCommunityUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCommunityUpdate", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Communities.Update(r.Context(), id, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminCommunityDisable(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCommunityDisable", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Communities.Disable(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("community disabled", slog.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminCategoryCreate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCategoryCreate", slog.String("remote", r.RemoteAddr))

	var req domain.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.Categories.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("category created", slog.String("id", id.String()), slog.String("name", req.Name))
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) AdminCategoryList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCategoryList", slog.String("remote", r.RemoteAddr))

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	categories, err := h.Categories.List(r.Context(), includeInactive)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) AdminCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminCategoryUpdate", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Categories.Update(r.Context(), id, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminAlertModerate(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminAlertModerate", slog.String("remote", r.RemoteAddr))

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.ModerateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := validator.ValidateStruct(req); err != nil {
		l.Warn("validation failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Moderator.Moderate(r.Context(), id, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("alert moderated", slog.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("AdminStats", slog.String("remote", r.RemoteAddr))

	stats, err := h.Stats.System(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	l := h.log(r)

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		l.Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
