package model

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

type User struct {
	ID        int32  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	InviteKey string `json:"invite_key,omitempty"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return Invalid("username must be provided")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return Invalid("email address is not valid: %s", u.Email)
		}
	}
	return nil
}

// NewInviteKey returns a random key used to share invitation links.
func NewInviteKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
