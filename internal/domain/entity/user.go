// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a verified account. It only exists after a pending signup passed OTP verification.
type User struct {
	ID           uuid.UUID
	Name         string
	Username     string  // lowercase, unique
	Email        string  // lowercase, unique
	Phone        *string // unique when present
	PasswordHash string
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewVerifiedUser promotes a pending signup into a user record.
func NewVerifiedUser(p *PendingSignup, now time.Time) *User {
	var phone *string
	if p.Phone != "" {
		v := p.Phone
		phone = &v
	}

	return &User{
		Name:         p.Name,
		Username:     p.Username,
		Email:        p.Email,
		Phone:        phone,
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
