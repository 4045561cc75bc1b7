package persistence

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/proctree/pkg/api"
)

// RedisEventStore appends history events to a Redis list under
// <prefix>events, oldest first.
type RedisEventStore struct {
	client *redis.Client
	key    string
}

var _ EventStore = (*RedisEventStore)(nil)

// NewRedisEventStore creates a Redis-backed event store. prefix defaults to
// "proctree:".
func NewRedisEventStore(client *redis.Client, prefix string) *RedisEventStore {
	if prefix == "" {
		prefix = "proctree:"
	}
	return &RedisEventStore{client: client, key: prefix + "events"}
}

func (s *RedisEventStore) AppendEvent(ctx context.Context, ev api.Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&ev); err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key, buf.Bytes()).Err()
}

func (s *RedisEventStore) ListEvents(ctx context.Context, filter EventFilter) ([]api.Event, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var out []api.Event
	for _, item := range raw {
		var ev api.Event
		if err := gob.NewDecoder(bytes.NewReader([]byte(item))).Decode(&ev); err != nil {
			return nil, err
		}
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}
