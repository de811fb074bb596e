package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
)

// DeliveryLedger keeps one key per (incident, recipient, channel) so a retried
// or duplicated dispatch never notifies the same person twice on a channel.
type DeliveryLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeliveryLedger(r *Redis, ttl time.Duration) *DeliveryLedger {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &DeliveryLedger{client: r.Client, ttl: ttl}
}

func ledgerKey(incidentID, recipientID uuid.UUID, ch domain.Channel) string {
	return fmt.Sprintf("sos:delivery:%s:%s:%s", incidentID, recipientID, ch)
}

// Claim returns false when the delivery was already claimed.
func (l *DeliveryLedger) Claim(ctx context.Context, incidentID, recipientID uuid.UUID, ch domain.Channel) (bool, error) {
	return l.client.SetNX(ctx, ledgerKey(incidentID, recipientID, ch), time.Now().UTC().Unix(), l.ttl).Result()
}

func (l *DeliveryLedger) Release(ctx context.Context, incidentID, recipientID uuid.UUID, ch domain.Channel) error {
	return l.client.Del(ctx, ledgerKey(incidentID, recipientID, ch)).Err()
}
