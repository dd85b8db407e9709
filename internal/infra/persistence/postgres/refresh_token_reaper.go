package postgres

import (
	"context"
	"log/slog"
	"time"

	"slynk/config"
	"slynk/internal/domain/repository"

	"go.uber.org/fx"
)

// ReaperParams holds dependencies for the refresh token reaper, injected by Fx.
type ReaperParams struct {
	fx.In
	fx.Lifecycle

	Config           *config.Config
	Logger           *slog.Logger
	RefreshTokenRepo repository.RefreshTokenRepository
}

// RefreshTokenReaper periodically purges expired refresh tokens so the ledger does not grow without bound.
type RefreshTokenReaper struct {
	repo     repository.RefreshTokenRepository
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewRefreshTokenReaper starts the purge loop with the application and stops it on shutdown.
// A zero auth.refreshTokenReapInterval disables it.
func NewRefreshTokenReaper(params ReaperParams) *RefreshTokenReaper {
	reaper := &RefreshTokenReaper{
		repo:   params.RefreshTokenRepo,
		logger: params.Logger,
		now:    time.Now,
	}
	if params.Config.Auth != nil {
		reaper.interval = params.Config.Auth.RefreshTokenReapInterval
	}

	if reaper.interval <= 0 {
		params.Logger.Info("Refresh token reaper disabled")

		return reaper
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				reaper.Run(runCtx)
			}()

			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}

			return nil
		},
	})

	return reaper
}

// Run purges once per interval until ctx is cancelled.
func (r *RefreshTokenReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Refresh token reaper started", slog.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// ReapOnce deletes every expired token. Failures are logged and retried on the next tick.
func (r *RefreshTokenReaper) ReapOnce(ctx context.Context) int64 {
	removed, err := r.repo.DeleteExpired(ctx, r.now())
	if err != nil {
		r.logger.Error("Failed to purge expired refresh tokens", slog.Any("error", err))

		return 0
	}

	if removed > 0 {
		r.logger.Info("Purged expired refresh tokens", slog.Int64("count", removed))
	}

	return removed
}
