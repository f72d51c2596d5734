package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionTTL is how long an untouched session survives in Redis.
const SessionTTL = 7 * 24 * time.Hour

// RedisStore implements SessionStore on Redis. Each session is one JSON
// document under session:<uuid>, refreshed with a TTL on every save.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a store from a redis:// URL.
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
		ttl:    SessionTTL,
	}, nil
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) SaveSession(ctx context.Context, doc *SessionDoc) error {
	doc.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(doc.ID), data, r.ttl).Err(); err != nil {
		r.logger.Error("redis SET failed", "session_id", doc.ID, "error", err)
		return fmt.Errorf("redis set failed: %w", err)
	}

	r.logger.Debug("session saved", "session_id", doc.ID, "bytes", len(data))
	return nil
}

func (r *RedisStore) LoadSession(ctx context.Context, id uuid.UUID) (*SessionDoc, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("redis GET failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var doc SessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &doc, nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("redis DEL failed", "session_id", id, "error", err)
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("failed to close redis connection", "error", err)
		return err
	}
	return nil
}
