package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const idempotencyKeyPrefix = "einvoice:idempotency:"

// Redis representa la conexión a Redis
type Redis struct {
	*redis.Client
}

// ConnectRedis establece la conexión a Redis
func ConnectRedis(ctx context.Context, cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}

	return &Redis{client}, nil
}

// Close cierra la conexión a Redis
func (r *Redis) Close() error {
	return r.Client.Close()
}

// HealthCheck verifica la salud de Redis
func (r *Redis) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// IdempotencyStore guarda el resultado de envíos exitosos por Idempotency-Key
type IdempotencyStore struct {
	redis  *Redis
	ttl    time.Duration
	logger *logrus.Logger
}

// NewIdempotencyStore crea un store respaldado por Redis
func NewIdempotencyStore(r *Redis, ttl time.Duration, logger *logrus.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		redis:  r,
		ttl:    ttl,
		logger: logger,
	}
}

// Get retorna el resultado guardado para la clave, si existe
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*models.SubmissionResult, bool, error) {
	raw, err := s.redis.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading idempotency key: %w", err)
	}

	var result models.SubmissionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Discarding corrupt idempotency entry")
		return nil, false, nil
	}
	return &result, true, nil
}

// Save guarda el resultado con el TTL configurado
func (s *IdempotencyStore) Save(ctx context.Context, key string, result *models.SubmissionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("error encoding idempotency entry: %w", err)
	}
	if err := s.redis.Set(ctx, idempotencyKeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("error saving idempotency key: %w", err)
	}
	return nil
}
