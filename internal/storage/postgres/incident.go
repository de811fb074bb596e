package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const incidentColumns = `
	id, reporter_id, video_url, thumbnail_url, duration_sec, message,
	ST_Y(geo_point::geometry), ST_X(geo_point::geometry), address, accuracy,
	captured_at, device_info, priority, category, classification,
	status, reviewer_id, reviewed_at, admin_notes, alert_outcome, created_at`

type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
	var (
		inc        domain.Incident
		reviewerID *uuid.UUID
		reviewedAt *time.Time
		notes      *string
	)

	err := row.Scan(
		&inc.ID,
		&inc.ReporterID,
		&inc.VideoURL,
		&inc.ThumbnailURL,
		&inc.DurationSec,
		&inc.Message,
		&inc.Location.Latitude,
		&inc.Location.Longitude,
		&inc.Location.Address,
		&inc.Location.Accuracy,
		&inc.CapturedAt,
		&inc.DeviceInfo,
		&inc.Priority,
		&inc.Category,
		&inc.Classification,
		&inc.Status,
		&reviewerID,
		&reviewedAt,
		&notes,
		&inc.AlertOutcome,
		&inc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewerID != nil && reviewedAt != nil {
		inc.Review = &domain.Review{
			ReviewerID: *reviewerID,
			ReviewedAt: *reviewedAt,
			Decision:   inc.Status,
		}
		if notes != nil {
			inc.Review.Notes = *notes
		}
	}
	return &inc, nil
}

func (p *IncidentRepo) Create(ctx context.Context, inc *domain.Incident) error {
	const op = "postgres.Incident.Create"

	if inc == nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	if inc.Status == "" {
		inc.Status = domain.StatusPending
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = time.Now().UTC()
	}
	if inc.CapturedAt.IsZero() {
		inc.CapturedAt = inc.CreatedAt
	}

	// ST_MakePoint takes (lng, lat).
	const query = `
INSERT INTO sos_reports (
	id, reporter_id, video_url, thumbnail_url, duration_sec, message,
	geo_point, address, accuracy, captured_at, device_info,
	priority, category, status, created_at
)
VALUES (
	$1, $2, $3, $4, $5, $6,
	ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography, $9, $10, $11, $12,
	$13, $14, $15, $16
)`

	_, err := p.pool.Exec(ctx, query,
		inc.ID,
		inc.ReporterID,
		inc.VideoURL,
		inc.ThumbnailURL,
		inc.DurationSec,
		inc.Message,
		inc.Location.Longitude,
		inc.Location.Latitude,
		inc.Location.Address,
		inc.Location.Accuracy,
		inc.CapturedAt,
		inc.DeviceInfo,
		string(inc.Priority),
		string(inc.Category),
		string(inc.Status),
		inc.CreatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *IncidentRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	query := `SELECT ` + incidentColumns + ` FROM sos_reports WHERE id = $1`

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		}
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

// listFilter renders the WHERE clause shared by the page and count queries.
func listFilter(req domain.ListSOSRequest) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if req.Status != nil {
		add("status = $%d", string(*req.Status))
	}
	if req.Priority != nil {
		add("priority = $%d", string(*req.Priority))
	}
	if req.Category != nil {
		add("category = $%d", string(*req.Category))
	}
	if req.StartDate != nil {
		add("created_at >= $%d", *req.StartDate)
	}
	if req.EndDate != nil {
		add("created_at <= $%d", *req.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *IncidentRepo) List(ctx context.Context, req domain.ListSOSRequest) ([]*domain.Incident, int64, error) {
	const op = "postgres.Incident.List"

	if req.Page <= 0 || req.Limit <= 0 {
		return nil, 0, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	where, args := listFilter(req)

	var total int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sos_reports`+where, args...).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	offset := (req.Page - 1) * req.Limit
	pageArgs := append(args, req.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM sos_reports%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		incidentColumns, where, len(args)+1, len(args)+2)

	items, err := p.query(ctx, op, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Pending returns pending reports, high priority first, then newest.
func (p *IncidentRepo) Pending(ctx context.Context, limit int) ([]*domain.Incident, error) {
	const op = "postgres.Incident.Pending"

	if limit <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	query := `SELECT ` + incidentColumns + `
FROM sos_reports
WHERE status = 'pending'
ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC
LIMIT $1`

	return p.query(ctx, op, query, limit)
}

func (p *IncidentRepo) query(ctx context.Context, op, query string, args ...any) ([]*domain.Incident, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	items := make([]*domain.Incident, 0, 16)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		items = append(items, inc)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows iteration failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return items, nil
}

// Review is a single conditional update: only a pending row transitions.
// Concurrent reviewers race on the row lock and exactly one sees a returned row.
func (p *IncidentRepo) Review(ctx context.Context, id uuid.UUID, review domain.Review) (*domain.Incident, error) {
	const op = "postgres.Incident.Review"

	if !review.Decision.IsDecision() || review.ReviewerID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now().UTC()
	}

	var notes *string
	if review.Notes != "" {
		notes = &review.Notes
	}

	query := `
UPDATE sos_reports
SET status = $2, reviewer_id = $3, reviewed_at = $4, admin_notes = $5
WHERE id = $1 AND status = 'pending'
RETURNING ` + incidentColumns

	inc, err := scanIncident(p.pool.QueryRow(ctx, query,
		id,
		string(review.Decision),
		review.ReviewerID,
		review.ReviewedAt,
		notes,
	))
	if err == nil {
		return inc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		p.logger.Error("db update failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	exists, err := p.exists(ctx, id)
	if err != nil {
		p.logger.Error("db exists failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil, fmt.Errorf("%s: %w", op, e.ErrAlreadyReviewed)
}

// SetAlertOutcome writes the outcome once, and only on an approved report.
func (p *IncidentRepo) SetAlertOutcome(ctx context.Context, id uuid.UUID, outcome domain.AlertOutcome) error {
	const op = "postgres.Incident.SetAlertOutcome"

	const query = `
UPDATE sos_reports
SET alert_outcome = $2
WHERE id = $1 AND status = 'approved' AND alert_outcome IS NULL`

	tag, err := p.pool.Exec(ctx, query, id, outcome)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	exists, err := p.exists(ctx, id)
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, e.ErrConflict)
}

// MergeClassification stores the advisory classification while the incident is still pending.
// A reviewed incident returns e.ErrAlreadyReviewed and is left unchanged.
func (p *IncidentRepo) MergeClassification(ctx context.Context, id uuid.UUID, c domain.Classification) error {
	const op = "postgres.Incident.MergeClassification"

	tag, err := p.pool.Exec(ctx, `UPDATE sos_reports SET classification = $2 WHERE id = $1 AND status = 'pending'`, id, c)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	ok, err := p.exists(ctx, id)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, e.ErrAlreadyReviewed)
}

func (p *IncidentRepo) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sos_reports WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}
