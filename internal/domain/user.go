package domain

import "time"

// User is an authenticated account in the durable store.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
