package events

import (
	"context"
	"encoding/json"
	"fmt"

	commonredis "github.com/andalize/proptic/common/redis"
)

// RedisStreamPublisher appends events to a Redis stream with XADD.
type RedisStreamPublisher struct {
	client *commonredis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *commonredis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}
	_, err = commonredis.PublishToStream(ctx, p.client, p.stream, p.maxLen, map[string]interface{}{
		"id":          e.ID,
		"type":        e.Type,
		"entity_id":   e.EntityID,
		"occurred_at": e.OccurredAt.Unix(),
		"payload":     payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	return nil
}

// Close leaves the shared client open; its owner closes it.
func (p *RedisStreamPublisher) Close() error { return nil }
