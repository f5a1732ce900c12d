package service

import (
	"fmt"
	"strings"
	"time"
)

// Session is the handle returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthConfig tunes token signing and password hashing.
type AuthConfig struct {
	SigningKey string
	SessionTTL time.Duration
	BcryptCost int
}

// AppointmentInput carries the mutable appointment fields.
type AppointmentInput struct {
	PatientName string
	Date        string
	Time        string
	Reason      string // optional
}

func (in AppointmentInput) normalized() AppointmentInput {
	return AppointmentInput{
		PatientName: strings.TrimSpace(in.PatientName),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Reason:      strings.TrimSpace(in.Reason),
	}
}

// validate only checks that required fields are present; date and time are
// free-form and never parsed.
func (in AppointmentInput) validate() error {
	switch {
	case in.PatientName == "":
		return fmt.Errorf("%w: patient name is required", ErrInvalidInput)
	case in.Date == "":
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	case in.Time == "":
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}
	return nil
}
