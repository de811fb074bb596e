package intake

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/middleware"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type ClassificationApplier interface {
	Apply(ctx context.Context, res domain.ClassificationResult) error
}

// Handler receives classifier results pushed over HTTP instead of the broker.
type Handler struct {
	logger *slog.Logger
	svc    ClassificationApplier
}

func NewHandler(logger *slog.Logger, svc ClassificationApplier) *Handler {
	return &Handler{logger: logger, svc: svc}
}

func (h *Handler) Classification(w http.ResponseWriter, r *http.Request) {
	l := h.logger
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		l = l.With(slog.String("request_id", reqID))
	}

	var res domain.ClassificationResult
	if err := middleware.DecodeJSON(w, r, &res); err != nil {
		l.Warn("classification rejected", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.svc.Apply(r.Context(), res); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, e.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, e.ErrAlreadyReviewed):
			status = http.StatusConflict
		case errors.Is(err, e.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, e.ErrUpstreamUnavailable):
			status = http.StatusServiceUnavailable
		}
		l.Warn("classification apply failed", slog.Int("status", status), slog.Any("error", err))
		h.writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}

	l.Info("classification stored", slog.String("sos_id", res.IncidentID.String()), slog.Bool("is_emergency", res.IsEmergency))
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
