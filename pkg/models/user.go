package models

import "time"

// User represents a Telegram user known to the bot
type User struct {
	ID           int64     `json:"id" db:"id"` // Telegram user ID
	PhoneID      *int64    `json:"phone_id" db:"phone_id"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
