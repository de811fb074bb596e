package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type StatsReader struct {
	logger *slog.Logger
	repo   StatsRepository
	cache  StatsCache
	now    func() time.Time
}

func NewStatsService(logger *slog.Logger, repo StatsRepository, cache StatsCache) *StatsReader {
	return &StatsReader{logger: logger, repo: repo, cache: cache, now: time.Now}
}

func (s *StatsReader) GetStats(ctx context.Context, tf domain.Timeframe) (*domain.SOSStats, error) {
	const op = "service.StatsReader.GetStats"

	if tf == "" {
		tf = domain.TimeframeDay
	}
	if !tf.Valid() {
		return nil, e.Validation(op, fmt.Errorf("timeframe must be one of day, week, month, year"))
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tf)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && !errors.Is(err, e.ErrNotFound) {
			s.logger.Warn("stats cache read failed", slog.String("op", op), slog.Any("error", err))
		}
	}

	since := tf.Since(s.now().UTC())
	stats, err := s.repo.Stats(ctx, since)
	if err != nil {
		return nil, err
	}
	stats.Timeframe = tf
	stats.Since = since

	if s.cache != nil {
		if err := s.cache.Set(ctx, tf, stats); err != nil {
			s.logger.Warn("stats cache write failed", slog.String("op", op), slog.Any("error", err))
		}
	}
	return stats, nil
}
