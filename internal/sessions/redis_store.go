package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds every Redis call so an unreachable instance fails
// requests fast instead of hanging them.
const redisOpTimeout = 3 * time.Second

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL, so they survive process
// restarts and are shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// Create issues a new token for the account.
func (s *RedisStore) Create(accountID, email string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(Session{AccountID: accountID, Email: email})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, redisKeyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Get resolves a token.
func (s *RedisStore) Get(token string) (*Session, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, redisKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, true, nil
}

// Delete removes a token.
func (s *RedisStore) Delete(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
