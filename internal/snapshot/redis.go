package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in redis with a TTL, so checkout state survives
// an API restart and expires on its own.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewRedisStore(client *redisclient.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(userID string) string {
	return fmt.Sprintf("checkout:snapshot:%s", userID)
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key(snap.UserID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*Snapshot, error) {
	payload, err := s.client.Get(ctx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot from redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) (bool, error) {
	deleted, err := s.client.Del(ctx, key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete snapshot from redis: %w", err)
	}
	return deleted > 0, nil
}
