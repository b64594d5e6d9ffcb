package domain

import "time"

// PasswordReset is keyed by email; at most one outstanding request exists per address.
type PasswordReset struct {
	Email     string    `db:"email" json:"email"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (r *PasswordReset) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.UpdatedAt) > ttl
}
