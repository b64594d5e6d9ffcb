package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Name            *string    `db:"name" json:"name,omitempty"`
	PasswordHash    []byte     `db:"password_hash" json:"-"`
	PasswordSalt    []byte     `db:"password_salt" json:"-"`
	Status          UserStatus `db:"status" json:"status"`
	ActivationToken *string    `db:"activation_token" json:"-"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
	Roles           []Role     `db:"-" json:"roles,omitempty"`
}

func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, role := range u.Roles {
		if role.ID == roleID {
			return true
		}
	}
	return false
}

func (u *User) HasRoleName(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// StatusAfterUnban is the status a banned account returns to: Activated once the
// email has been verified, Unactivated otherwise.
func (u *User) StatusAfterUnban() UserStatus {
	if u.EmailVerifiedAt != nil {
		return UserStatusActivated
	}
	return UserStatusUnactivated
}
