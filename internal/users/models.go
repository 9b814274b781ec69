package users

import (
	"time"
)

// User is the profile stored under a verified identity
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:128"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
