package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

const DEFAULT_REDIS_KEY_PREFIX = "ledger:checkpoint:"

type RedisConnector struct {
	client *redis.Client
	prefix string
}

func NewRedisConnector(cfg *config.RedisConfig) (*RedisConnector, error) {
	options := &redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.EnableTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(options)

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DEFAULT_REDIS_KEY_PREFIX
	}

	log.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return NewRedisConnectorWithClient(client, prefix), nil
}

func NewRedisConnectorWithClient(client *redis.Client, prefix string) *RedisConnector {
	return &RedisConnector{client: client, prefix: prefix}
}

func (r *RedisConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+string(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	return r.client.Set(ctx, r.prefix+string(category), data, 0).Err()
}

func (r *RedisConnector) Close() error {
	return r.client.Close()
}
