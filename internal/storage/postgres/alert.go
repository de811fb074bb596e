package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger}
}

// Create inserts the alert record. incident_id is unique, so a second alert
// for the same incident fails with e.ErrUniqueViolation.
func (p *AlertRepo) Create(ctx context.Context, a *domain.Alert) error {
	const op = "postgres.Alert.Create"

	if a == nil || a.IncidentID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = domain.AlertSending
	}
	if a.DispatchedAt.IsZero() {
		a.DispatchedAt = time.Now().UTC()
	}
	if a.RecipientIDs == nil {
		a.RecipientIDs = []uuid.UUID{}
	}

	const query = `
INSERT INTO alerts (
	id, incident_id, geo_point, recipient_ids, message, status,
	push_sent, push_failed, whatsapp_sent, whatsapp_failed, recipient_count, dispatched_at
)
VALUES (
	$1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7,
	$8, $9, $10, $11, $12, $13
)`

	_, err := p.pool.Exec(ctx, query,
		a.ID,
		a.IncidentID,
		a.Longitude,
		a.Latitude,
		a.RecipientIDs,
		a.Message,
		string(a.Status),
		a.Counts.PushSent,
		a.Counts.PushFailed,
		a.Counts.WhatsAppSent,
		a.Counts.WhatsAppFailed,
		a.RecipientCount,
		a.DispatchedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// Complete finalizes counters. Only an alert still in the sending state is updated.
func (p *AlertRepo) Complete(ctx context.Context, id uuid.UUID, status domain.AlertStatus, counts domain.DeliveryCounts, recipientCount int) error {
	const op = "postgres.Alert.Complete"

	if status != domain.AlertSent && status != domain.AlertFailed {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
UPDATE alerts
SET status = $2,
    push_sent = $3, push_failed = $4,
    whatsapp_sent = $5, whatsapp_failed = $6,
    recipient_count = $7,
    completed_at = $8
WHERE id = $1 AND status = 'sending'`

	tag, err := p.pool.Exec(ctx, query,
		id,
		string(status),
		counts.PushSent,
		counts.PushFailed,
		counts.WhatsAppSent,
		counts.WhatsAppFailed,
		recipientCount,
		time.Now().UTC(),
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrConflict)
	}
	return nil
}

const alertColumns = `
SELECT id, incident_id, ST_Y(geo_point::geometry), ST_X(geo_point::geometry),
       recipient_ids, message, status,
       push_sent, push_failed, whatsapp_sent, whatsapp_failed,
       recipient_count, dispatched_at, completed_at
FROM alerts`

func scanAlert(row rowScanner) (*domain.Alert, error) {
	var a domain.Alert
	err := row.Scan(
		&a.ID,
		&a.IncidentID,
		&a.Latitude,
		&a.Longitude,
		&a.RecipientIDs,
		&a.Message,
		&a.Status,
		&a.Counts.PushSent,
		&a.Counts.PushFailed,
		&a.Counts.WhatsAppSent,
		&a.Counts.WhatsAppFailed,
		&a.RecipientCount,
		&a.DispatchedAt,
		&a.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *AlertRepo) GetByIncident(ctx context.Context, incidentID uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.GetByIncident"

	a, err := scanAlert(p.pool.QueryRow(ctx, alertColumns+` WHERE incident_id = $1`, incidentID))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return a, nil
}

// ListStale returns alerts stuck in the sending state since before the given instant.
func (p *AlertRepo) ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.Alert, error) {
	const op = "postgres.Alert.ListStale"

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	rows, err := p.pool.Query(ctx, alertColumns+`
WHERE status = 'sending' AND dispatched_at < $1
ORDER BY dispatched_at
LIMIT $2`, before, limit)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]*domain.Alert, 0, limit)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows iteration failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}
