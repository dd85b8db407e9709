package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"slynk/config"
	"slynk/internal/domain/lifecycle"
	"slynk/internal/errors"
	"slynk/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the primary connection, registers read replicas through dbresolver,
// and on start pings the database and applies migrations when postgres.migrate is set.
func New(params Params) (*gorm.DB, error) {
	pgCfg := params.Config.Postgres
	if pgCfg == nil {
		return nil, errors.New("postgres must be configured")
	}

	db, err := gorm.Open(postgres.Open(buildDSN(pgCfg, pgCfg.Master)), &gorm.Config{
		// Multi-step atomic work goes through txManager.Execute.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}

	if len(pgCfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(pgCfg.Replicas))
		for _, replica := range pgCfg.Replicas {
			replicas = append(replicas, postgres.Open(buildDSN(pgCfg, replica)))
		}

		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(pgCfg.MaxIdleConns).
			SetMaxOpenConns(pgCfg.MaxOpenConns).
			SetConnMaxLifetime(pgCfg.ConnMaxLifetime).
			SetConnMaxIdleTime(pgCfg.ConnMaxIdleTime)

		if err := db.Use(resolver); err != nil {
			return nil, errors.Wrap(err, "failed to register read replicas")
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}
	applyPoolSettings(sqlDB, pgCfg)

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if pgCfg.Migrate {
				if err := runMigrations(ctx, sqlDB); err != nil {
					return err
				}
				params.Logger.Info("Database migrations applied")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

func buildDSN(pgCfg *config.PostgresConfig, conn config.ConnectionConfig) string {
	sslMode := pgCfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	timeZone := pgCfg.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		conn.Host, conn.Port, conn.UserName, conn.Password, pgCfg.DBName, sslMode, timeZone)
}

func applyPoolSettings(pool *sql.DB, pgCfg *config.PostgresConfig) {
	if pgCfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(pgCfg.MaxIdleConns)
	}
	if pgCfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(pgCfg.MaxOpenConns)
	}
	if pgCfg.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(pgCfg.ConnMaxLifetime)
	}
	if pgCfg.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(pgCfg.ConnMaxIdleTime)
	}
}

func runMigrations(ctx context.Context, sqlDB *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}

func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waitDelta := cur.WaitCount - prev.WaitCount
			waitDurationDelta := cur.WaitDuration - prev.WaitDuration
			prev = cur

			if waitDelta <= 0 {
				continue
			}

			attrs := []slog.Attr{
				slog.Int64("waitCountDelta", waitDelta),
				slog.Duration("avgWait", waitDurationDelta/time.Duration(waitDelta)),
				slog.Int("openConns", cur.OpenConnections),
				slog.Int("inUseConns", cur.InUse),
				slog.Int("idleConns", cur.Idle),
			}

			level := slog.LevelDebug
			if waitDurationDelta >= dbPoolWarnDurationThreshold {
				level = slog.LevelWarn
			}
			logger.LogAttrs(ctx, level, "Postgres pool wait", attrs...)
		}
	}
}
