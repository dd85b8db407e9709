package service

import (
	"context"
	"time"
)

// OTPMail is one verification email. Code is the plaintext OTP and must only end up in the message body.
type OTPMail struct {
	To       string
	Name     string
	Code     string
	ValidFor time.Duration
	Resend   bool
}

// Mailer delivers verification emails, directly or through a queue.
type Mailer interface {
	SendOTP(ctx context.Context, mail *OTPMail) error
}
