package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/middleware"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const (
	defaultPendingLimit = 50
	defaultRadiusM      = 1000
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type SOSAdmin interface {
	Pending(ctx context.Context, limit int) ([]*domain.Incident, error)
	List(ctx context.Context, req domain.ListSOSRequest) (*domain.ListSOSResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	SubmitReview(ctx context.Context, id, reviewerID uuid.UUID, req domain.ReviewRequest) (*domain.ReviewResult, error)
	UsersInRadius(ctx context.Context, req domain.UsersInRadiusRequest) (*domain.UsersInRadiusResponse, error)
}

type StatsGetter interface {
	GetStats(ctx context.Context, tf domain.Timeframe) (*domain.SOSStats, error)
}

type Handler struct {
	logger *slog.Logger
	SOS    SOSAdmin
	Stats  StatsGetter

	// ReviewWriteTimeout replaces the server write deadline for SOSReview, which waits for the
	// alert fan-out. Zero clears the deadline.
	ReviewWriteTimeout time.Duration
}

func NewHandler(logger *slog.Logger, sos SOSAdmin, stats StatsGetter) *Handler {
	return &Handler{
		logger: logger,
		SOS:    sos,
		Stats:  stats,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) SOSPending(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SOSPending", slog.String("query", r.URL.RawQuery))

	limit := parseInt(r.URL.Query().Get("limit"), defaultPendingLimit)
	if limit > 100 {
		limit = 100
		l.Warn("limit capped", slog.Int("limit", limit))
	}

	reports, err := h.SOS.Pending(r.Context(), limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"count":   len(reports),
	})
}

func (h *Handler) SOSList(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SOSList", slog.String("query", r.URL.RawQuery))

	req, err := parseListRequest(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.SOS.List(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("reports listed", slog.Int("count", len(resp.Reports)), slog.Int64("total", resp.Total))
	h.writeJSON(w, http.StatusOK, resp)
}

func parseListRequest(r *http.Request) (domain.ListSOSRequest, error) {
	const op = "admin.parseListRequest"

	q := r.URL.Query()
	req := domain.ListSOSRequest{
		Page:  parseInt(q.Get("page"), 1),
		Limit: parseInt(q.Get("limit"), 20),
	}

	if v := q.Get("status"); v != "" && v != "all" {
		s := domain.ReviewStatus(v)
		req.Status = &s
	}
	if v := q.Get("priority"); v != "" {
		p := domain.Priority(v)
		req.Priority = &p
	}
	if v := q.Get("category"); v != "" {
		c := domain.Category(v)
		req.Category = &c
	}

	var err error
	if req.StartDate, err = parseDate(q.Get("startDate"), false); err != nil {
		return req, e.Validation(op, fmt.Errorf("startDate: %w", err))
	}
	if req.EndDate, err = parseDate(q.Get("endDate"), true); err != nil {
		return req, e.Validation(op, fmt.Errorf("endDate: %w", err))
	}
	return req, nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseDate(s string, end bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("expected RFC3339 or YYYY-MM-DD")
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) SOSGet(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SOSGet", slog.String("remote", r.RemoteAddr))

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	inc, err := h.SOS.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, inc)
}

func (h *Handler) SOSReview(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	reviewer, ok := middleware.ReviewerID(r.Context())
	if !ok {
		h.handleError(w, r, e.ErrUnauthorized)
		return
	}

	var req domain.ReviewRequest
	if err := middleware.DecodeJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("reviewing report",
		slog.String("sos_id", id.String()),
		slog.String("reviewer_id", reviewer.String()),
		slog.String("decision", string(req.Decision)),
	)

	h.extendWriteDeadline(w, l)

	res, err := h.SOS.SubmitReview(r.Context(), id, reviewer, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	attrs := []any{slog.String("sos_id", id.String()), slog.String("status", string(res.Incident.Status))}
	if res.Alert != nil {
		attrs = append(attrs, slog.Int("recipients", res.Alert.RecipientCount))
	}
	l.Info("report reviewed", attrs...)

	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) extendWriteDeadline(w http.ResponseWriter, l *slog.Logger) {
	var deadline time.Time
	if h.ReviewWriteTimeout > 0 {
		deadline = time.Now().Add(h.ReviewWriteTimeout)
	}
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		l.Warn("extend write deadline failed", slog.Any("error", err))
	}
}

func (h *Handler) UsersInRadius(w http.ResponseWriter, r *http.Request) {
	const op = "admin.UsersInRadius"

	l := h.log(r)
	l.Debug("UsersInRadius", slog.String("query", r.URL.RawQuery))

	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		h.handleError(w, r, e.Wrap(op, e.ErrInvalidCoordinates))
		return
	}
	lng, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		h.handleError(w, r, e.Wrap(op, e.ErrInvalidCoordinates))
		return
	}
	radius := float64(defaultRadiusM)
	if v := q.Get("radius"); v != "" {
		if radius, err = strconv.ParseFloat(v, 64); err != nil {
			h.handleError(w, r, e.Validation(op, fmt.Errorf("radius must be a number")))
			return
		}
	}

	resp, err := h.SOS.UsersInRadius(r.Context(), domain.UsersInRadiusRequest{
		Latitude:  lat,
		Longitude: lng,
		RadiusM:   radius,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SOSStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("SOSStats", slog.String("query", r.URL.RawQuery))

	tf := domain.Timeframe(r.URL.Query().Get("timeframe"))

	stats, err := h.Stats.GetStats(r.Context(), tf)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("stats success", slog.String("timeframe", string(stats.Timeframe)))
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.log(r).Warn("invalid id", slog.String("id", idStr), slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
