package entity

import "time"

// PendingSignup is the transient record held between signup and OTP verification.
// It never contains the plaintext password or OTP.
type PendingSignup struct {
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	Role         Role      `json:"role"`
	OTPHash      string    `json:"otpHash"`
	OTPExpiresAt time.Time `json:"otpExpiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSentAt   time.Time `json:"lastSentAt"`
	Attempts     int       `json:"attempts"`
}

// InCooldown reports whether a new code was sent less than cooldown ago.
func (p *PendingSignup) InCooldown(now time.Time, cooldown time.Duration) bool {
	return now.Sub(p.LastSentAt) < cooldown
}

// IsOTPExpired reports whether the current code is past its validity window.
func (p *PendingSignup) IsOTPExpired(now time.Time) bool {
	return now.After(p.OTPExpiresAt)
}

// AttemptsExhausted reports whether no verification attempts remain.
func (p *PendingSignup) AttemptsExhausted(maxAttempts int) bool {
	return p.Attempts >= maxAttempts
}

// Reissue installs a fresh code hash and restarts the validity window and attempt counter.
func (p *PendingSignup) Reissue(otpHash string, now time.Time, validFor time.Duration) {
	p.OTPHash = otpHash
	p.OTPExpiresAt = now.Add(validFor)
	p.LastSentAt = now
	p.Attempts = 0
}
