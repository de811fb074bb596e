package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
	mock_service "github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service/mocks"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func TestGetStats_CacheHit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)
	want := &domain.SOSStats{Timeframe: domain.TimeframeWeek, Total: 7}

	cache.EXPECT().Get(gomock.Any(), domain.TimeframeWeek).Return(want, nil).Times(1)

	got, err := service.NewStatsService(newTestLogger(), repo, cache).GetStats(context.Background(), domain.TimeframeWeek)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("expected cached stats")
	}
}

func TestGetStats_CacheMissLoadsAndStores(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), domain.TimeframeDay).Return(nil, e.ErrNotFound)
	repo.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(&domain.SOSStats{Total: 3, Pending: 1, Approved: 2}, nil)
	cache.EXPECT().Set(gomock.Any(), domain.TimeframeDay, gomock.Any()).Return(nil)

	got, err := service.NewStatsService(newTestLogger(), repo, cache).GetStats(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Timeframe != domain.TimeframeDay || got.Total != 3 || got.Since.IsZero() {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestGetStats_CacheErrorsAreIgnored(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockStatsRepository(ctrl)
	cache := mock_service.NewMockStatsCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), domain.TimeframeMonth).Return(nil, errors.New("redis down"))
	repo.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(&domain.SOSStats{}, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	if _, err := service.NewStatsService(newTestLogger(), repo, cache).GetStats(context.Background(), domain.TimeframeMonth); err != nil {
		t.Fatalf("cache errors must not fail stats: %v", err)
	}
}

func TestGetStats_InvalidTimeframe(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewStatsService(newTestLogger(), mock_service.NewMockStatsRepository(ctrl), nil)

	_, err := svc.GetStats(context.Background(), "decade")
	if !errors.Is(err, e.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
