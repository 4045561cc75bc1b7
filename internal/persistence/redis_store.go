package persistence

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a ProjectStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>group:<name>   => gob-encoded redisGroupPayload
//	<prefix>idx:groups     => SET of all stored group names
//
// The index is updated in the same transaction as the payload, so
// ListGroups never reports a name whose snapshot was not written.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ProjectStore = (*RedisStore)(nil)

type redisGroupPayload struct {
	Snapshot  []byte
	UpdatedAt int64
}

// NewRedisStore creates a RedisStore.
// prefix is optional but recommended (e.g. "proctree:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "proctree:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) keyGroup(name string) string {
	return s.prefix + "group:" + name
}

func (s *RedisStore) keyIndex() string {
	return s.prefix + "idx:groups"
}

func (s *RedisStore) SaveGroup(ctx context.Context, rec GroupRecord) error {
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}

	var buf bytes.Buffer
	payload := redisGroupPayload{Snapshot: rec.Snapshot, UpdatedAt: at.UnixNano()}
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyGroup(rec.Name), buf.Bytes(), 0)
	pipe.SAdd(ctx, s.keyIndex(), rec.Name)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetGroup(ctx context.Context, name string) (GroupRecord, error) {
	data, err := s.client.Get(ctx, s.keyGroup(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return GroupRecord{}, ErrGroupNotFound
		}
		return GroupRecord{}, err
	}

	var payload redisGroupPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return GroupRecord{}, errors.Join(ErrCorruptSnapshot, err)
	}
	return GroupRecord{
		Name:      name,
		Snapshot:  payload.Snapshot,
		UpdatedAt: time.Unix(0, payload.UpdatedAt),
	}, nil
}

func (s *RedisStore) ListGroups(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.keyIndex()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s *RedisStore) DeleteGroup(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.keyGroup(name))
	pipe.SRem(ctx, s.keyIndex(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrGroupNotFound
	}
	return nil
}
