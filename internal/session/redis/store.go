package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "roombook:session:"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Store keeps each session as a redis hash that expires after TTL of inactivity.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
}

func New(ctx context.Context, conf Config) (*Store, error) {
	//nolint:exhaustruct
	client := goredis.NewClient(&goredis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", conf.Addr, err)
	}

	return &Store{client: client, ttl: conf.TTL}, nil
}

func (s *Store) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, keyPrefix+sessionID, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("hget %s: %w", key, err)
	}

	if err = s.client.Expire(ctx, keyPrefix+sessionID, s.ttl).Err(); err != nil {
		return "", false, fmt.Errorf("extend session: %w", err)
	}

	return value, true, nil
}

func (s *Store) Set(ctx context.Context, sessionID, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, keyPrefix+sessionID, key, value)
		pipe.Expire(ctx, keyPrefix+sessionID, s.ttl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.HDel(ctx, keyPrefix+sessionID, keys...).Err(); err != nil {
		return fmt.Errorf("hdel: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
