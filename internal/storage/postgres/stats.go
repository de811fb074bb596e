package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStats(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

// Stats aggregates reports created and alerts dispatched since the given instant.
func (p *StatsRepo) Stats(ctx context.Context, since time.Time) (*domain.SOSStats, error) {
	const op = "postgres.Stats.Stats"

	out := &domain.SOSStats{
		Since:      since,
		ByCategory: make(map[domain.Category]int64),
		ByPriority: make(map[domain.Priority]int64),
	}

	const totals = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'pending'),
       COUNT(*) FILTER (WHERE status = 'approved'),
       COUNT(*) FILTER (WHERE status = 'rejected')
FROM sos_reports
WHERE created_at >= $1`

	err := p.pool.QueryRow(ctx, totals, since).Scan(&out.Total, &out.Pending, &out.Approved, &out.Rejected)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	if err := p.grouped(ctx, `SELECT category, COUNT(*) FROM sos_reports WHERE created_at >= $1 GROUP BY category`, since,
		func(k string, n int64) { out.ByCategory[domain.Category(k)] = n }); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	if err := p.grouped(ctx, `SELECT priority, COUNT(*) FROM sos_reports WHERE created_at >= $1 GROUP BY priority`, since,
		func(k string, n int64) { out.ByPriority[domain.Priority(k)] = n }); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	const alerts = `
SELECT COUNT(*), COALESCE(SUM(recipient_count), 0)
FROM alerts
WHERE dispatched_at >= $1 AND status = 'sent'`

	if err := p.pool.QueryRow(ctx, alerts, since).Scan(&out.AlertsSent, &out.RecipientsNotified); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return out, nil
}

func (p *StatsRepo) grouped(ctx context.Context, query string, since time.Time, set func(string, int64)) error {
	rows, err := p.pool.Query(ctx, query, since)
	if err != nil {
		return err
	}

	var (
		key string
		n   int64
	)
	_, err = pgx.ForEachRow(rows, []any{&key, &n}, func() error {
		set(key, n)
		return nil
	})
	return err
}
