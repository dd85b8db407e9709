package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"slynk/config"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			OTPTTL:         15 * time.Minute,
			ResendCooldown: 60 * time.Second,
			MaxOTPAttempts: 5,
		},
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fakePendingStore keeps copies so callers cannot mutate stored state by accident.
type fakePendingStore struct {
	mu      sync.Mutex
	records map[string]entity.PendingSignup
	ttls    map[string]time.Duration
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{records: map[string]entity.PendingSignup{}, ttls: map[string]time.Duration{}}
}

func (s *fakePendingStore) Get(_ context.Context, email string) (*entity.PendingSignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[email]
	if !ok {
		return nil, domainerrors.ErrPendingSignupNotFound
	}

	return &record, nil
}

func (s *fakePendingStore) Set(_ context.Context, record *entity.PendingSignup, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Email] = *record
	s.ttls[record.Email] = ttl

	return nil
}

func (s *fakePendingStore) Update(_ context.Context, record *entity.PendingSignup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.Email]; !ok {
		return domainerrors.ErrPendingSignupNotFound
	}
	s.records[record.Email] = *record

	return nil
}

func (s *fakePendingStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, email)
	delete(s.ttls, email)

	return nil
}

func (s *fakePendingStore) peek(email string) (entity.PendingSignup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[email]

	return record, ok
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]entity.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domainerrors.ErrUserNotFound
	}

	return &user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}

	return nil, domainerrors.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Phone != nil && *user.Phone == phone {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		samePhone := existing.Phone != nil && user.Phone != nil && *existing.Phone == *user.Phone
		if existing.Email == user.Email || existing.Username == user.Username || samePhone {
			return domainerrors.ErrAccountAlreadyExists.WrapMessage("duplicate key")
		}
	}

	user.ID = uuid.Must(uuid.NewV7())
	r.users[user.ID] = *user

	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.users)
}

type fakeLedger struct {
	mu     sync.Mutex
	tokens map[string]entity.RefreshToken
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{tokens: map[string]entity.RefreshToken{}}
}

func (l *fakeLedger) Create(_ context.Context, token *entity.RefreshToken) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	token.ID = uuid.New()
	l.tokens[token.TokenHash] = *token

	return nil
}

func (l *fakeLedger) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, ok := l.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return &token, nil
}

func (l *fakeLedger) ConsumeByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	token, ok := l.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	delete(l.tokens, tokenHash)

	return &token, nil
}

func (l *fakeLedger) DeleteByHash(_ context.Context, tokenHash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.tokens, tokenHash)

	return nil
}

func (l *fakeLedger) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for hash, token := range l.tokens {
		if token.IsExpired(now) {
			delete(l.tokens, hash)
			removed++
		}
	}

	return removed, nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.tokens)
}

// fakeTxManager runs the callback directly. It does not roll back.
type fakeTxManager struct {
	users  *fakeUserRepo
	ledger *fakeLedger
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) UserRepo() repository.UserRepository { return m.users }

func (m *fakeTxManager) RefreshTokenRepo() repository.RefreshTokenRepository { return m.ledger }

// fakeOTP hands out codes in order and hashes them reversibly for easy assertions.
type fakeOTP struct {
	codes []string
	next  int
}

func (g *fakeOTP) Generate() (string, string, error) {
	code := g.codes[g.next%len(g.codes)]
	g.next++

	return code, g.Hash(code), nil
}

func (g *fakeOTP) Hash(code string) string { return "otp:" + code }

func (g *fakeOTP) Matches(code, codeHash string) bool { return g.Hash(code) == codeHash }

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "pw:" + password, nil }

func (fakeHasher) Check(password, hash string) bool { return hash == "pw:"+password }

type fakeTokens struct {
	mu     sync.Mutex
	issued int
}

func (f *fakeTokens) GenerateAccessToken(userID uuid.UUID, role entity.Role) (string, error) {
	return fmt.Sprintf("access:%s:%s", userID, role), nil
}

func (f *fakeTokens) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	parts := strings.Split(tokenString, ":")
	if len(parts) != 3 || parts[0] != "access" {
		return nil, domainerrors.ErrAccessTokenInvalid
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, domainerrors.ErrAccessTokenInvalid
	}

	return &service.Claims{UserID: id, Role: entity.Role(parts[2]), Type: service.TokenTypeAccess}, nil
}

func (f *fakeTokens) GenerateRefreshToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.issued++

	return fmt.Sprintf("refresh-%d", f.issued), nil
}

func (f *fakeTokens) HashRefreshToken(token string) string { return "rt:" + token }

func (f *fakeTokens) AccessTokenDuration() time.Duration { return 15 * time.Minute }

func (f *fakeTokens) RefreshTokenDuration() time.Duration { return 30 * 24 * time.Hour }
