// Package impl contains the implementation of the application's business logic.
package impl

import (
	"strings"
	"time"

	"slynk/config"

	"github.com/nyaruka/phonenumbers"
)

const (
	defaultOTPTTL         = 15 * time.Minute
	defaultResendCooldown = 60 * time.Second
	defaultMaxOTPAttempts = 5
)

// otpPolicy holds the timing and attempt limits of the signup state machine.
type otpPolicy struct {
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func newOTPPolicy(cfg *config.Config) otpPolicy {
	policy := otpPolicy{
		ttl:         defaultOTPTTL,
		cooldown:    defaultResendCooldown,
		maxAttempts: defaultMaxOTPAttempts,
	}
	if cfg == nil || cfg.Auth == nil {
		return policy
	}

	if cfg.Auth.OTPTTL > 0 {
		policy.ttl = cfg.Auth.OTPTTL
	}
	if cfg.Auth.ResendCooldown > 0 {
		policy.cooldown = cfg.Auth.ResendCooldown
	}
	if cfg.Auth.MaxOTPAttempts > 0 {
		policy.maxAttempts = cfg.Auth.MaxOTPAttempts
	}

	return policy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// normalizePhone formats an international number as E.164 so the unique index compares like with like.
// Input that does not parse is kept as typed.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return phone
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
