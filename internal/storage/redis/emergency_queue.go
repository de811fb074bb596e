package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

const EmergencyQueueKey = "sos:emergency:dispatch"

// EmergencyQueue buffers approved reports for the emergency-services webhook.
type EmergencyQueue struct {
	client *redis.Client
	key    string
}

func NewEmergencyQueue(client *redis.Client, key string) *EmergencyQueue {
	if key == "" {
		key = EmergencyQueueKey
	}
	return &EmergencyQueue{client: client, key: key}
}

func (q *EmergencyQueue) Enqueue(ctx context.Context, p domain.EmergencyDispatch) error {
	const op = "redis.EmergencyQueue.Enqueue"

	b, err := json.Marshal(p)
	if err != nil {
		return e.Wrap(op, err)
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return e.Wrap(op, errors.Join(e.ErrUpstreamUnavailable, err))
	}
	return nil
}

func (q *EmergencyQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.EmergencyDispatch, error) {
	var p domain.EmergencyDispatch

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return p, e.ErrEmergencyQueueEmpty
		}
		return p, err
	}
	if len(res) < 2 {
		return p, e.ErrEmergencyQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &p); err != nil {
		return p, e.Wrap("redis.EmergencyQueue.BRPop", err)
	}
	return p, nil
}
