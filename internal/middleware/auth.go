package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	APIKeyHeader = "X-API-Key"
	RoleAdmin    = "admin"
)

type ctxKey int

const reviewerKey ctxKey = iota

var (
	errInvalidToken = errors.New("invalid token")
	errNotAdmin     = errors.New("admin role required")
)

// AdminClaims is the token issued to reviewers by the auth service.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// APIKeyMiddleware guards machine-to-machine routes.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminJWT accepts HS256 bearer tokens with role=admin and puts the subject
// into the request context as the reviewer id.
func AdminJWT(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			reviewer, err := ParseAdminToken(secret, strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("admin token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithReviewerID(r.Context(), reviewer)))
		})
	}
}

func ParseAdminToken(secret, raw string) (uuid.UUID, error) {
	var claims AdminClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}
	if claims.Role != RoleAdmin {
		return uuid.Nil, errNotAdmin
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return id, nil
}

// IssueAdminToken signs a reviewer token. Used by tooling and tests.
func IssueAdminToken(secret string, reviewer uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   reviewer.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func WithReviewerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, reviewerKey, id)
}

func ReviewerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(reviewerKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
