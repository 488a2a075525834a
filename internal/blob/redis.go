package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Redis is a Store keeping each object in a Redis string.
type Redis struct {
	client *redis.Client
	cfg    RedisConfig
	logger *zap.Logger
}

var _ Store = (*Redis)(nil)

// NewRedis connects to Redis, retrying the first ping with backoff.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "blob:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(ping, policy); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, cfg: cfg, logger: logger.Named("blob")}, nil
}

func (s *Redis) Close() error { return s.client.Close() }

func (s *Redis) key(path string) (string, error) {
	p, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	return s.cfg.KeyPrefix + p, nil
}

func (s *Redis) Upload(ctx context.Context, path string, data []byte) (string, error) {
	key, err := s.key(path)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	s.logger.Debug("uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return fmt.Sprintf("redis://%s/%d/%s", s.cfg.Addr, s.cfg.DB, key), nil
}

func (s *Redis) Download(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	key, err := s.key(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 {
		// STRLEN is 0 for a missing key, so absence is left to GET.
		size, err := s.client.StrLen(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("stat blob: %w", err)
		}
		if size > maxBytes {
			return nil, ErrTooLarge
		}
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *Redis) Delete(ctx context.Context, path string) error {
	key, err := s.key(path)
	if err != nil {
		return err
	}
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
