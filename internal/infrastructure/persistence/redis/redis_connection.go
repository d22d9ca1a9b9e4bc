// Package redis implements the license persistence port on Redis. Conditional
// writes are expressed as Lua scripts so existence checks and mutations run
// atomically server-side.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/internal/domain/repository"
)

// NewClient dials Redis and verifies connectivity before returning.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// translateErr maps backend failures onto the repository sentinels.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, goredis.Nil):
		return repository.ErrRecordMissing
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "LOADING") || strings.Contains(msg, "BUSY") ||
		strings.Contains(msg, "max number of clients") {
		return fmt.Errorf("%w: %v", repository.ErrStoreThrottled, err)
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "closed") {
		return fmt.Errorf("%w: %v", repository.ErrStoreUnavailable, err)
	}
	return err
}
