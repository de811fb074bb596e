package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geo"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

// RecipientRepo reads user locations and channel identifiers. The users table is owned elsewhere.
type RecipientRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRecipientRepo(pool *pgxpool.Pool, logger *slog.Logger) *RecipientRepo {
	return &RecipientRepo{pool: pool, logger: logger}
}

// geo_point is geography, so ST_DWithin and ST_Distance work in metres.
// $1 = lng, $2 = lat, $3 = radius in metres.
const recipientSelect = `
SELECT id, name,
       ST_Y(geo_point::geometry), ST_X(geo_point::geometry),
       push_token, phone, is_active,
       ST_Distance(geo_point, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) AS distance_m
FROM users
WHERE is_active
  AND geo_point IS NOT NULL
  AND ST_DWithin(geo_point, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)`

func (p *RecipientRepo) FindEligible(ctx context.Context, lat, lng, radiusM float64, exclude uuid.UUID) ([]domain.Recipient, error) {
	const op = "postgres.Recipient.FindEligible"

	if !geo.ValidCoordinates(lat, lng) || radiusM <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	query := recipientSelect + `
  AND id <> $4
  AND (NULLIF(btrim(push_token), '') IS NOT NULL OR NULLIF(btrim(phone), '') IS NOT NULL)
ORDER BY distance_m`

	return p.query(ctx, op, query, lng, lat, radiusM, exclude)
}

func (p *RecipientRepo) FindInRadius(ctx context.Context, lat, lng, radiusM float64) ([]domain.Recipient, error) {
	const op = "postgres.Recipient.FindInRadius"

	if !geo.ValidCoordinates(lat, lng) || radiusM <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	return p.query(ctx, op, recipientSelect+` ORDER BY distance_m`, lng, lat, radiusM)
}

// FindByIDs reloads active users by id. distance_m is left at zero; callers compute it.
func (p *RecipientRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Recipient, error) {
	const op = "postgres.Recipient.FindByIDs"

	if len(ids) == 0 {
		return []domain.Recipient{}, nil
	}

	const query = `
SELECT id, name,
       ST_Y(geo_point::geometry), ST_X(geo_point::geometry),
       push_token, phone, is_active,
       0::float8 AS distance_m
FROM users
WHERE id = ANY($1) AND is_active AND geo_point IS NOT NULL`

	return p.query(ctx, op, query, ids)
}

func (p *RecipientRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "postgres.Recipient.Exists"

	var ok bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok); err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return false, e.WrapError(ctx, op, err)
	}
	return ok, nil
}

func (p *RecipientRepo) query(ctx context.Context, op, query string, args ...any) ([]domain.Recipient, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]domain.Recipient, 0, 16)
	for rows.Next() {
		var r domain.Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Latitude, &r.Longitude, &r.PushToken, &r.Phone, &r.Active, &r.DistanceM); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows iteration failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}
