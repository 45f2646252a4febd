package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/scene"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// RedisStorage implements the Storage interface using Redis for queues
// and scenes, and the filesystem for static resources (subjects, items).
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// Client exposes the underlying Redis client for pub/sub collaborators.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Queue operations (Redis-backed)

func (r *RedisStorage) SaveQueue(ctx context.Context, subjectID string, env *action.Envelope) error {
	data, err := env.ToJSON()
	if err != nil {
		r.logger.Error("Failed to marshal queue", "subject", subjectID, "error", err)
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	key := "queue:" + subjectID
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save queue", "subject", subjectID, "error", err)
		return fmt.Errorf("failed to save queue: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadQueue(ctx context.Context, subjectID string) (*action.Envelope, error) {
	key := "queue:" + subjectID
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Queue not found", "subject", subjectID)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load queue", "subject", subjectID, "error", err)
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	env, err := action.EnvelopeFromJSON([]byte(cmd.Val()))
	if err != nil {
		r.logger.Error("Failed to unmarshal queue", "subject", subjectID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal queue: %w", err)
	}

	return env, nil
}

func (r *RedisStorage) DeleteQueue(ctx context.Context, subjectID string) error {
	key := "queue:" + subjectID
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete queue", "subject", subjectID, "error", err)
		return fmt.Errorf("failed to delete queue: %w", err)
	}
	return nil
}

// Scene operations (Redis-backed)

func (r *RedisStorage) SaveScene(ctx context.Context, sc *scene.Scene) error {
	data, err := sc.ToJSON()
	if err != nil {
		r.logger.Error("Failed to marshal scene", "scene", sc.ID, "error", err)
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	key := "scene:" + sc.ID
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save scene", "scene", sc.ID, "error", err)
		return fmt.Errorf("failed to save scene: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadScene(ctx context.Context, id string) (*scene.Scene, error) {
	key := "scene:" + id
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Scene not found", "scene", id)
			return nil, nil
		}
		r.logger.Error("Failed to load scene", "scene", id, "error", err)
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	sc, err := scene.FromJSON([]byte(cmd.Val()))
	if err != nil {
		r.logger.Error("Failed to unmarshal scene", "scene", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal scene: %w", err)
	}

	return sc, nil
}
