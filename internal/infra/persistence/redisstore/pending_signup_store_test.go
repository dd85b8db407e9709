package redisstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*pendingSignupStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	return newPendingSignupStore(client, "pending-signup:", slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func samplePending(now time.Time) *entity.PendingSignup {
	return &entity.PendingSignup{
		Name:         "Ada Lovelace",
		Username:     "ada",
		Email:        "ada@example.com",
		Phone:        "+14155550100",
		PasswordHash: "$2a$04$hash",
		Role:         entity.RoleInnovator,
		OTPHash:      "otp-hash",
		OTPExpiresAt: now.Add(15 * time.Minute),
		CreatedAt:    now,
		LastSentAt:   now,
	}
}

func TestPendingSignupStore_SetGetDelete(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	record := samplePending(now)

	require.NoError(t, store.Set(ctx, record, 15*time.Minute))
	assert.True(t, mr.Exists("pending-signup:ada@example.com"))
	assert.Equal(t, 15*time.Minute, mr.TTL("pending-signup:ada@example.com"))

	got, err := store.Get(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, record.Username, got.Username)
	assert.Equal(t, record.OTPHash, got.OTPHash)
	assert.True(t, record.OTPExpiresAt.Equal(got.OTPExpiresAt))
	assert.Equal(t, entity.RoleInnovator, got.Role)

	require.NoError(t, store.Delete(ctx, "ada@example.com"))
	_, err = store.Get(ctx, "ada@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrPendingSignupNotFound))
}

func TestPendingSignupStore_RecordNeverHoldsPlaintextSecrets(t *testing.T) {
	store, mr := newTestStore(t)
	record := samplePending(time.Now())

	require.NoError(t, store.Set(context.Background(), record, time.Minute))

	raw, err := mr.Get("pending-signup:ada@example.com")
	require.NoError(t, err)
	assert.NotContains(t, raw, "password\"")
	assert.NotContains(t, raw, "\"otp\"")
	assert.Contains(t, raw, "\"otpHash\"")
}

func TestPendingSignupStore_ExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, samplePending(time.Now()), 15*time.Minute))
	mr.FastForward(15*time.Minute + time.Second)

	_, err := store.Get(ctx, "ada@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrPendingSignupNotFound))
}

func TestPendingSignupStore_SetOverwritesAndResetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	record := samplePending(time.Now())

	require.NoError(t, store.Set(ctx, record, 15*time.Minute))
	mr.FastForward(10 * time.Minute)

	record.OTPHash = "second-hash"
	require.NoError(t, store.Set(ctx, record, 15*time.Minute))

	assert.Equal(t, 15*time.Minute, mr.TTL("pending-signup:ada@example.com"))
	got, err := store.Get(ctx, record.Email)
	require.NoError(t, err)
	assert.Equal(t, "second-hash", got.OTPHash)
}

func TestPendingSignupStore_UpdateKeepsRemainingTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	record := samplePending(time.Now())

	require.NoError(t, store.Set(ctx, record, 15*time.Minute))
	mr.FastForward(5 * time.Minute)

	record.Attempts = 1
	require.NoError(t, store.Update(ctx, record))

	assert.Equal(t, 10*time.Minute, mr.TTL("pending-signup:ada@example.com"))
	got, err := store.Get(ctx, record.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
}

func TestPendingSignupStore_UpdateAfterExpiryDoesNotResurrect(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	record := samplePending(time.Now())

	require.NoError(t, store.Set(ctx, record, time.Minute))
	mr.FastForward(2 * time.Minute)

	err := store.Update(ctx, record)
	assert.True(t, errors.Is(err, domainerrors.ErrPendingSignupNotFound))
	assert.False(t, mr.Exists("pending-signup:ada@example.com"))
}

func TestPendingSignupStore_ReconnectsAfterFailure(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.Close()
	err := store.Set(ctx, samplePending(time.Now()), time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPendingStoreUnavailable))
	assert.False(t, store.healthy.Load())

	_, err = store.Get(ctx, "ada@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrPendingStoreUnavailable))

	require.NoError(t, mr.Restart())
	_, err = store.Get(ctx, "ada@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrPendingSignupNotFound))
	assert.True(t, store.healthy.Load())
}
