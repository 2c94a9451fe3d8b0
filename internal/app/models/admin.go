package models

import "time"

// Admin is the administrative account allowed to mutate certificates.
// Seeded once at first boot; not exposed through any endpoint.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
