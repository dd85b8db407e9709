package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base32"

	"slynk/config"
	"slynk/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/xlzd/gotp"
)

// otpSecretBytes sizes the per-code TOTP secret (160 bits, the RFC 4226 recommendation).
const otpSecretBytes = 20

// totpGenerator derives each code from a TOTP over a fresh random secret, so
// codes are unpredictable and independent of each other.
type totpGenerator struct {
	hashKey []byte
}

// NewOTPGenerator keys code hashes with secretKey.otp.
func NewOTPGenerator(cfg *config.Config) service.OTPGenerator {
	return &totpGenerator{hashKey: []byte(cfg.SecretKey.OTP)}
}

func (g *totpGenerator) Generate() (string, string, error) {
	secret := make([]byte, otpSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", errors.Wrap(err, "failed to read otp secret")
	}

	code := gotp.NewDefaultTOTP(base32.StdEncoding.EncodeToString(secret)).Now()

	return code, g.Hash(code), nil
}

func (g *totpGenerator) Hash(code string) string {
	return keyedHash(g.hashKey, code)
}

func (g *totpGenerator) Matches(code, codeHash string) bool {
	return hmac.Equal([]byte(g.Hash(code)), []byte(codeHash))
}
