package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type stubClassifier struct {
	out   domain.Classification
	err   error
	block bool
}

func (s stubClassifier) Classify(ctx context.Context, _ domain.SOSCreated) (domain.Classification, error) {
	if s.block {
		<-ctx.Done()
		return domain.Classification{}, ctx.Err()
	}
	return s.out, s.err
}

type recordingPublisher struct {
	got []domain.ClassificationResult
}

func (p *recordingPublisher) PublishClassified(_ context.Context, res domain.ClassificationResult) error {
	p.got = append(p.got, res)
	return nil
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func event(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := json.Marshal(domain.SOSCreated{IncidentID: id, VideoURL: "https://cdn.example.com/v.mp4"})
	require.NoError(t, err)
	return b
}

func TestClassifyWorker_PublishesResult(t *testing.T) {
	t.Parallel()

	fire := domain.ServiceFireBrigade
	high := domain.ConfidenceHigh
	pub := &recordingPublisher{}
	w := NewClassifyWorker(logger(), stubClassifier{out: domain.Classification{
		IsEmergency: true, PrimaryService: &fire, Confidence: &high,
	}}, pub, time.Second)

	id := uuid.New()
	require.NoError(t, w.Handle(context.Background(), event(t, id)))

	require.Len(t, pub.got, 1)
	assert.Equal(t, id, pub.got[0].IncidentID)
	assert.Equal(t, domain.ServiceFireBrigade, *pub.got[0].PrimaryService)
}

func TestClassifyWorker_BadPayloadIsPermanent(t *testing.T) {
	t.Parallel()

	w := NewClassifyWorker(logger(), stubClassifier{}, &recordingPublisher{}, time.Second)

	err := w.Handle(context.Background(), []byte("nope"))
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	err = w.Handle(context.Background(), []byte(`{"video_url":"x"}`))
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestClassifyWorker_InvalidShapeIsNotPublished(t *testing.T) {
	t.Parallel()

	police := domain.ServicePolice
	pub := &recordingPublisher{}
	w := NewClassifyWorker(logger(), stubClassifier{out: domain.Classification{
		IsEmergency: false, PrimaryService: &police,
	}}, pub, time.Second)

	err := w.Handle(context.Background(), event(t, uuid.New()))
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	assert.Empty(t, pub.got)
}

func TestClassifyWorker_TimeoutIsTransient(t *testing.T) {
	t.Parallel()

	w := NewClassifyWorker(logger(), stubClassifier{block: true}, &recordingPublisher{}, 10*time.Millisecond)

	err := w.Handle(context.Background(), event(t, uuid.New()))
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
	assert.False(t, errors.Is(err, e.ErrInvalidInput))
}

func TestClassifyWorker_ClassifierErrorKeepsCause(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"video_missing", fmt.Errorf("fetch video: %w", e.ErrNotFound), e.ErrNotFound},
		{"video_too_large", fmt.Errorf("video exceeds limit: %w", e.ErrInvalidInput), e.ErrInvalidInput},
		{"provider_down", fmt.Errorf("gemini: %w", e.ErrUpstreamUnavailable), e.ErrUpstreamUnavailable},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			pub := &recordingPublisher{}
			w := NewClassifyWorker(logger(), stubClassifier{err: c.err}, pub, time.Second)

			err := w.Handle(context.Background(), event(t, uuid.New()))
			require.Error(t, err)
			assert.ErrorIs(t, err, c.want)
			assert.False(t, errors.Is(err, e.ErrInternal))
			assert.Contains(t, err.Error(), c.err.Error())
			assert.Empty(t, pub.got)
		})
	}
}
