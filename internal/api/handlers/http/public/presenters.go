package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sammiykay/community-alert/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	l.Error("handler error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	var status int
	var message string
	switch {
	case errors.Is(err, e.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, e.ErrInvalidCoordinates):
		status, message = http.StatusBadRequest, "invalid coordinates"
	case errors.Is(err, e.ErrInvalidRadius):
		status, message = http.StatusBadRequest, "radius must be positive"
	case errors.Is(err, e.ErrInvalidInput):
		status, message = http.StatusBadRequest, "invalid input"
	case errors.Is(err, e.ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, e.ErrUniqueViolation), errors.Is(err, e.ErrConflict):
		status, message = http.StatusConflict, "conflict"
	default:
		status, message = http.StatusInternalServerError, "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
