package redisstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"slynk/config"
	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/errors"

	"github.com/redis/go-redis/v9"
)

// pendingSignupStore stores one JSON document per email under keyPrefix+email.
type pendingSignupStore struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *slog.Logger

	// healthy drops to false after a connection failure; the next call pings before using the client.
	healthy atomic.Bool
}

func NewPendingSignupStore(client *redis.Client, cfg *config.Config, logger *slog.Logger) repository.PendingSignupRepository {
	return newPendingSignupStore(client, cfg.Redis.KeyPrefix, logger)
}

func newPendingSignupStore(client redis.UniversalClient, keyPrefix string, logger *slog.Logger) *pendingSignupStore {
	store := &pendingSignupStore{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
	store.healthy.Store(true)

	return store
}

func (s *pendingSignupStore) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

func (s *pendingSignupStore) key(email string) string {
	return s.keyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// ensureConnected re-validates the connection after a previous failure.
func (s *pendingSignupStore) ensureConnected(ctx context.Context) error {
	if s.healthy.Load() {
		return nil
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		return domainerrors.ErrPendingStoreUnavailable.WrapMessage(err.Error())
	}

	s.healthy.Store(true)
	s.log(ctx).Info("Pending signup store reconnected")

	return nil
}

// storeError maps a client failure to the transient store error and marks the connection for re-validation.
func (s *pendingSignupStore) storeError(ctx context.Context, err error, op string) error {
	s.healthy.Store(false)
	s.log(ctx).Error("Pending signup store failure", slog.String("op", op), slog.Any("error", err))

	return errors.Wrap(domainerrors.ErrPendingStoreUnavailable, op+": "+err.Error())
}

func (s *pendingSignupStore) Get(ctx context.Context, email string) (*entity.PendingSignup, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, s.key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainerrors.ErrPendingSignupNotFound
	}
	if err != nil {
		return nil, s.storeError(ctx, err, "get")
	}

	var record entity.PendingSignup
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(err, "failed to decode pending signup")
	}

	return &record, nil
}

func (s *pendingSignupStore) Set(ctx context.Context, record *entity.PendingSignup, ttl time.Duration) error {
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode pending signup")
	}

	if err := s.client.Set(ctx, s.key(record.Email), payload, ttl).Err(); err != nil {
		return s.storeError(ctx, err, "set")
	}

	return nil
}

// Update uses SET XX KEEPTTL so an expired key is never recreated without a TTL.
func (s *pendingSignupStore) Update(ctx context.Context, record *entity.PendingSignup) error {
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode pending signup")
	}

	err = s.client.SetArgs(ctx, s.key(record.Email), payload, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return domainerrors.ErrPendingSignupNotFound
	}
	if err != nil {
		return s.storeError(ctx, err, "update")
	}

	return nil
}

func (s *pendingSignupStore) Delete(ctx context.Context, email string) error {
	if err := s.ensureConnected(ctx); err != nil {
		return err
	}

	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return s.storeError(ctx, err, "delete")
	}

	return nil
}
