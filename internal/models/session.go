package models

import (
	"strings"
	"time"
)

const ProviderPassword = "password"

// Session is the application's copy of a provider-issued session.
type Session struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Provider  string    `json:"provider"`
	Token     string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	if s == nil {
		return true
	}

	if s.ExpiresAt.IsZero() {
		return false
	}

	return !now.Before(s.ExpiresAt)
}

// DisplayName falls back to the email when the provider did not supply a name.
func (s *Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	return s.Email
}

// Initials returns up to two upper-case letters for the user avatar.
func (s *Session) Initials() string {
	source := s.DisplayName()
	initials := make([]rune, 0, 2)
	takeNext := true

	for _, r := range source {
		if len(initials) == 2 {
			break
		}

		switch {
		case r == ' ' || r == '.' || r == '@' || r == '_' || r == '-':
			if r == '@' {
				return strings.ToUpper(string(initials))
			}
			takeNext = true
		case takeNext:
			initials = append(initials, r)
			takeNext = false
		}
	}

	if len(initials) == 0 {
		return "?"
	}

	return strings.ToUpper(string(initials))
}

// SignUpResult is returned by a registration. Session is nil while the provider waits for email confirmation.
type SignUpResult struct {
	UserID  string
	Email   string
	Session *Session
}

func (r *SignUpResult) PendingConfirmation() bool {
	return r.Session == nil
}
