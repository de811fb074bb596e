package intake_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/intake"
	mock_intake "github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/intake/mocks"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestClassification_Accepted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_intake.NewMockClassificationApplier(ctrl)
	h := intake.NewHandler(newTestLogger(), svc)

	id := uuid.New()
	ambulance := domain.ServiceAmbulance
	high := domain.ConfidenceHigh

	svc.EXPECT().
		Apply(gomock.Any(), domain.ClassificationResult{
			IncidentID: id,
			Classification: domain.Classification{
				IsEmergency:    true,
				PrimaryService: &ambulance,
				Confidence:     &high,
				Reason:         "person collapsed",
			},
		}).
		Return(nil).
		Times(1)

	body := `{"incident_id":"` + id.String() + `","is_emergency":true,"primary_service":"Ambulance","confidence":"High","reason":"person collapsed"}`
	rr := httptest.NewRecorder()
	h.Classification(rr, httptest.NewRequest(http.MethodPost, "/api/v1/intake/classification", bytes.NewBufferString(body)))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected %d got %d body=%s", http.StatusAccepted, rr.Code, rr.Body.String())
	}
}

func TestClassification_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown_report", e.ErrNotFound, http.StatusNotFound},
		{"bad_shape", e.Validation("service.Apply", e.ErrInvalidInput), http.StatusBadRequest},
		{"db_down", e.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{"already_reviewed", fmt.Errorf("postgres.Incident.MergeClassification: %w", e.ErrAlreadyReviewed), http.StatusConflict},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mock_intake.NewMockClassificationApplier(ctrl)
			svc.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(c.err).Times(1)

			rr := httptest.NewRecorder()
			body := `{"incident_id":"` + uuid.NewString() + `","is_emergency":false}`
			intake.NewHandler(newTestLogger(), svc).
				Classification(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

			if rr.Code != c.want {
				t.Fatalf("expected %d got %d", c.want, rr.Code)
			}
		})
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rr := httptest.NewRecorder()
	intake.NewHandler(newTestLogger(), mock_intake.NewMockClassificationApplier(ctrl)).
		Classification(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected %d for malformed body, got %d", http.StatusBadRequest, rr.Code)
	}
}

type brokenWriter struct {
	header http.Header
	code   int
}

func (b *brokenWriter) Header() http.Header {
	if b.header == nil {
		b.header = http.Header{}
	}
	return b.header
}

func (b *brokenWriter) WriteHeader(code int)      { b.code = code }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestClassification_EncodeFailureIsLogged(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := mock_intake.NewMockClassificationApplier(ctrl)
	svc.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	var logs bytes.Buffer
	h := intake.NewHandler(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelError})), svc)

	w := &brokenWriter{}
	body := `{"incident_id":"` + uuid.NewString() + `","is_emergency":false}`
	h.Classification(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))

	if w.code != http.StatusAccepted {
		t.Fatalf("expected %d got %d", http.StatusAccepted, w.code)
	}
	if !bytes.Contains(logs.Bytes(), []byte("json encode failed")) || !bytes.Contains(logs.Bytes(), []byte("connection reset")) {
		t.Fatalf("encode error not logged: %s", logs.String())
	}
}
