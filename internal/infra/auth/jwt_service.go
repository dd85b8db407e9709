package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"slynk/config"
	"slynk/internal/domain/entity"
	"slynk/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const refreshTokenBytes = 64

// jwtService signs HS256 access tokens and produces opaque refresh tokens.
type jwtService struct {
	accessSecret []byte
	refreshKey   []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          func() time.Time
}

// NewJWTService requires secretKey.access. secretKey.refresh keys the refresh token hash.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("access token secret must be provided")
	}

	accessTTL := 15 * time.Minute
	refreshTTL := 30 * 24 * time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		accessSecret: []byte(cfg.SecretKey.Access),
		refreshKey:   []byte(cfg.SecretKey.Refresh),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		now:          time.Now,
	}, nil
}

func (s *jwtService) GenerateAccessToken(userID uuid.UUID, role entity.Role) (string, error) {
	now := s.now()
	claims := &service.Claims{
		UserID: userID,
		Role:   role,
		Type:   service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.accessSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse access token")
	}
	if !token.Valid {
		return nil, errors.New("access token is not valid")
	}
	if claims.Type != service.TokenTypeAccess {
		return nil, errors.Errorf("unexpected token type %q", claims.Type)
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("access token has no subject")
	}

	return claims, nil
}

func (s *jwtService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}

// HashRefreshToken uses HMAC-SHA256 when a refresh key is configured and plain SHA-256 otherwise.
func (s *jwtService) HashRefreshToken(token string) string {
	return keyedHash(s.refreshKey, token)
}

func (s *jwtService) AccessTokenDuration() time.Duration {
	return s.accessTTL
}

func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func keyedHash(key []byte, value string) string {
	if len(key) == 0 {
		sum := sha256.Sum256([]byte(value))

		return hex.EncodeToString(sum[:])
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))

	return hex.EncodeToString(mac.Sum(nil))
}
