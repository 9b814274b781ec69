package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims carried by identity tokens. Tokens from external issuers may only set sub.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns user_id, falling back to the registered subject
func (c *Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Permission grants one named capability to a user
type Permission struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:128"`
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PermissionsResponse lists what the caller may do
type PermissionsResponse struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}
