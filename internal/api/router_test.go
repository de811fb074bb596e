package api_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/middleware"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
	mock_service "github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service/mocks"
)

const (
	testAPIKey = "intake-key"
	testSecret = "jwt-secret"
)

type routerMocks struct {
	reports *mock_service.MockReportService
	admin   *mock_service.MockAdminSOSService
	stats   *mock_service.MockStatsService
	classes *mock_service.MockClassificationService
}

func newTestServer(t *testing.T) (http.Handler, routerMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := routerMocks{
		reports: mock_service.NewMockReportService(ctrl),
		admin:   mock_service.NewMockAdminSOSService(ctrl),
		stats:   mock_service.NewMockStatsService(ctrl),
		classes: mock_service.NewMockClassificationService(ctrl),
	}
	svc := service.NewService(m.reports, m.admin, m.stats, m.classes)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{APIKey: testAPIKey, JWTSecret: testSecret}
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))

	return api.NewServer(ctx, cfg, logger, svc, nil).Handler(), m
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t)

	for _, path := range []string{"/api/v1/sos/pending", "/api/v1/sos/all", "/api/v1/sos/stats", "/api/v1/sos/" + uuid.NewString()} {
		rr := do(h, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rr.Code)
		}
	}
}

func TestRouter_ReviewWithToken(t *testing.T) {
	t.Parallel()

	h, m := newTestServer(t)
	id, reviewer := uuid.New(), uuid.New()

	m.admin.EXPECT().
		SubmitReview(gomock.Any(), id, reviewer, domain.ReviewRequest{Decision: domain.StatusRejected}).
		Return(&domain.ReviewResult{Incident: &domain.Incident{ID: id, Status: domain.StatusRejected}}, nil).
		Times(1)

	token, err := middleware.IssueAdminToken(testSecret, reviewer, time.Hour)
	if err != nil {
		t.Fatalf("IssueAdminToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sos/"+id.String()+"/review", bytes.NewBufferString(`{"decision":"rejected"}`))
	req.Header.Set("Authorization", "Bearer "+token)

	rr := do(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRouter_PendingIsNotAnID(t *testing.T) {
	t.Parallel()

	h, m := newTestServer(t)
	m.admin.EXPECT().Pending(gomock.Any(), 50).Return(nil, nil).Times(1)

	token, _ := middleware.IssueAdminToken(testSecret, uuid.New(), time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sos/pending", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	if rr := do(h, req); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestRouter_IntakeRequiresAPIKey(t *testing.T) {
	t.Parallel()

	h, m := newTestServer(t)
	body := `{"incident_id":"` + uuid.NewString() + `","is_emergency":false}`

	rr := do(h, httptest.NewRequest(http.MethodPost, "/api/v1/intake/classification", bytes.NewBufferString(body)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}

	m.classes.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake/classification", bytes.NewBufferString(body))
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	if rr := do(h, req); rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRouter_PublicReportAndHealth(t *testing.T) {
	t.Parallel()

	h, m := newTestServer(t)

	m.reports.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(domain.CreateSOSResponse{SOSID: uuid.New(), Status: "pending", EstimatedReviewTime: "10-15 minutes"}, nil).
		Times(1)

	body := `{"userId":"` + uuid.NewString() + `","videoUrl":"https://cdn.example.com/v.mp4","location":{"latitude":1,"longitude":2}}`
	if rr := do(h, httptest.NewRequest(http.MethodPost, "/api/v1/sos/report", bytes.NewBufferString(body))); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}

	if rr := do(h, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}
