package e

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrAlreadyReviewed     = errors.New("already reviewed")
	ErrNoRecipients        = errors.New("no eligible recipients within radius")
	ErrUniqueViolation     = errors.New("unique violation")
	ErrEmergencyQueueEmpty = errors.New("emergency dispatch queue is empty")
	ErrUnauthorized        = errors.New("unauthorized")

	// ErrValidation is the name the HTTP layer and callers use for rejected input.
	ErrValidation = ErrInvalidInput

	ErrInvalidCoordinates = fmt.Errorf("invalid coordinates: %w", ErrInvalidInput)
	ErrInvalidDecision    = fmt.Errorf("invalid decision: %w", ErrInvalidInput)
	ErrInvalidUserID      = fmt.Errorf("invalid userId: %w", ErrInvalidInput)
)

// Validation wraps a validator message so errors.Is(err, ErrValidation) holds.
func Validation(op string, err error) error {
	return fmt.Errorf("%s: %w: %s", op, ErrValidation, err.Error())
}

func WrapError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %s", op, ErrUpstreamUnavailable, err.Error())
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrUniqueViolation)
		case "23503", "23514":
			return fmt.Errorf("%s: %w", op, ErrInvalidInput)
		default:
			return fmt.Errorf("%s: pg error %s: %w", op, pgErr.Code, ErrInternal)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w", op, ErrUpstreamUnavailable)
	}
	return fmt.Errorf("%s: %w", op, ErrInternal)
}
