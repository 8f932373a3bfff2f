// AngelaMos | 2026
// queue.go

package rating

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Queue durably remembers listings whose aggregate could not be written.
// Duplicate pushes collapse into one entry.
type Queue interface {
	Push(ctx context.Context, listingIDs ...string) error
	PopBatch(ctx context.Context, n int) ([]string, error)
	Len(ctx context.Context) (int64, error)
}

type redisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) Queue {
	if key == "" {
		key = "rating:stale"
	}
	return &redisQueue{client: client, key: key}
}

func (q *redisQueue) Push(ctx context.Context, listingIDs ...string) error {
	if len(listingIDs) == 0 {
		return nil
	}

	members := make([]any, len(listingIDs))
	for i, id := range listingIDs {
		members[i] = id
	}

	if err := q.client.SAdd(ctx, q.key, members...).Err(); err != nil {
		return fmt.Errorf("push stale listings: %w", err)
	}
	return nil
}

func (q *redisQueue) PopBatch(ctx context.Context, n int) ([]string, error) {
	ids, err := q.client.SPopN(ctx, q.key, int64(n)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pop stale listings: %w", err)
	}
	return ids, nil
}

func (q *redisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.SCard(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count stale listings: %w", err)
	}
	return n, nil
}
