package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	status, msg := statusOf(err)
	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if status >= 500 {
		l.Error("handler error", attrs...)
	} else {
		l.Warn("request rejected", attrs...)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, e.ErrAlreadyReviewed):
		return http.StatusBadRequest, "report has already been reviewed"
	case errors.Is(err, e.ErrInvalidDecision):
		return http.StatusBadRequest, "decision must be approved or rejected"
	case errors.Is(err, e.ErrInvalidCoordinates):
		return http.StatusBadRequest, "invalid coordinates"
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, e.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
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
