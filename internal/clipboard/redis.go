package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/proctree/pkg/api"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "proctree:clipboard"

// Redis shares one clipboard between editors through a Redis key.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ api.Clipboard = (*Redis)(nil)

// NewRedis creates a clipboard stored under key. A zero ttl keeps the payload
// until it is overwritten.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key, ttl: ttl}
}

func (c *Redis) Set(ctx context.Context, p api.Payload) error {
	data, err := encodePayload(p)
	if err != nil {
		return fmt.Errorf("clipboard: encode: %w", err)
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *Redis) Get(ctx context.Context) (api.Payload, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return api.Payload{}, false, nil
	}
	if err != nil {
		return api.Payload{}, false, err
	}
	p, err := decodePayload(data)
	if err != nil {
		return api.Payload{}, false, &api.InvalidClipboardData{Reason: "unreadable clipboard entry", Err: err}
	}
	return p, true, nil
}
