package domain

import "time"

// User represents an account the API authenticates against.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsSuperuser  bool
	APIKey       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
