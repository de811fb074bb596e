package public

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

const maxReportBytes = 64 << 10

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type ReportCreator interface {
	Create(ctx context.Context, req domain.CreateSOSRequest) (domain.CreateSOSResponse, error)
}

type Handler struct {
	logger  *slog.Logger
	Reports ReportCreator
}

func NewHandler(logger *slog.Logger, reports ReportCreator) *Handler {
	return &Handler{
		logger:  logger,
		Reports: reports,
	}
}

// SOSReport accepts a report from the mobile client. Validation happens in the service.
func (h *Handler) SOSReport(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CreateSOSRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBytes))
	if err := dec.Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	// only one JSON object per request
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	resp, err := h.Reports.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("sos report created", slog.String("sos_id", resp.SOSID.String()), slog.String("user_id", req.UserID))
	h.writeJSON(w, http.StatusCreated, resp)
}
