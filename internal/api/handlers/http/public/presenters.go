package public

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, e.ErrNotFound):
		status, msg = http.StatusNotFound, "user not found"
	case errors.Is(err, e.ErrInvalidCoordinates):
		status, msg = http.StatusBadRequest, "invalid coordinates"
	case errors.Is(err, e.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrUpstreamUnavailable):
		status, msg = http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	if status >= 500 {
		h.log(r).Error("report failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		h.log(r).Warn("report rejected", slog.Int("status", status), slog.Any("error", err))
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
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
