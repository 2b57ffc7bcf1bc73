// internal/workflow/store.go
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"airquality-agent/internal/common/logger"
)

// StateStore persists suspended workflow states between the suspend and
// resume calls. Load returns (nil, nil) for an unknown or expired id.
type StateStore interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
}

const stateKeyPrefix = "workflow:state:"

// RedisStateStore keeps suspended states in Redis with a TTL, so abandoned
// disambiguations expire on their own.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStateStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStateStore{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "state-store"}),
	}
}

func (s *RedisStateStore) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("state marshal failed: %w", err)
	}
	if err := s.client.Set(ctx, stateKeyPrefix+state.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("state save failed: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, stateKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state load failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("state unmarshal failed: %w", err)
	}
	return &state, nil
}

func (s *RedisStateStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, stateKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("state delete failed: %w", err)
	}
	return nil
}
