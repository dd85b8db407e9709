// Package redisstore keeps transient signup state in Redis.
package redisstore

import (
	"context"
	"log/slog"

	"slynk/config"
	"slynk/internal/domain/lifecycle"
	"slynk/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the process-wide Redis client. It is pinged on start and closed on stop.
func New(params Params) (*redis.Client, error) {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		return nil, errors.New("redis.addr must be configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			params.Logger.Info("Connected to Redis", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return errors.WithStack(client.Close())
		},
	})

	return client, nil
}
