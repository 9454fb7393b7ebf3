package model

import (
	"fmt"
	"time"
)

// User represents a registry participant, keyed by their Telegram identity.
// Moderators additionally carry a password hash for panel/API login.
type User struct {
	ID           int64     `json:"id"`
	TelegramID   *int64    `json:"telegram_id,omitempty"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// ValidateRole checks that r is a known role.
func ValidateRole(r string) error {
	if r != RoleUser && r != RoleModerator {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, r)
	}
	return nil
}

// IsModerator reports whether the user may moderate listings.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// CanLogin reports whether password login is possible for the user.
// Moderator role implies a password hash must be set before login.
func (u *User) CanLogin() bool {
	return u.Role == RoleModerator && u.PasswordHash != ""
}

// ValidatePassword enforces the minimum password policy for moderators.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	return nil
}
