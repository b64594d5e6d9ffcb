package http

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/njprem/user_admin_backend/internal/domain"
	"github.com/njprem/user_admin_backend/internal/service"
)

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Email                string `json:"email" form:"email" example:"user@example.com"`
	Password             string `json:"password" form:"password" example:"secret"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" example:"secret"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.PasswordConfirmation, validation.Required, validation.By(stringEquals(r.Password))),
	)
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" form:"email" example:"user@example.com"`
	Password string `json:"password" form:"password" example:"secret"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// PasswordResetTokenRequest asks for a reset link to be sent.
type PasswordResetTokenRequest struct {
	Email string `json:"email" form:"email" example:"user@example.com"`
}

func (r PasswordResetTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetRequest redeems a reset token.
type PasswordResetRequest struct {
	Email                string `json:"email" form:"email" example:"user@example.com"`
	Password             string `json:"password" form:"password" example:"new-secret"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" example:"new-secret"`
	Token                string `json:"token" form:"token"`
}

func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.PasswordConfirmation, validation.Required, validation.By(stringEquals(r.Password))),
		validation.Field(&r.Token, validation.Required),
	)
}

// ChangePasswordRequest re-authenticates with the current password.
type ChangePasswordRequest struct {
	Password                string `json:"password" form:"password" example:"secret"`
	NewPassword             string `json:"new_password" form:"new_password" example:"new-secret"`
	NewPasswordConfirmation string `json:"new_password_confirmation" form:"new_password_confirmation" example:"new-secret"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
		validation.Field(&r.NewPasswordConfirmation, validation.Required, validation.By(stringEquals(r.NewPassword))),
	)
}

// CreateUserRequest is the admin payload for POST /users.
type CreateUserRequest struct {
	Email           string     `json:"email" example:"user@example.com"`
	Password        string     `json:"password" example:"secret"`
	Name            *string    `json:"name,omitempty" example:"Jane Doe"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty" example:"2024-01-01T12:00:00Z"`
	RoleIDs         []string   `json:"role_ids"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

// UpdateUserRequest is the admin payload for PATCH /users/{id}.
type UpdateUserRequest struct {
	Name            *string    `json:"name,omitempty" example:"Jane Doe"`
	Email           *string    `json:"email,omitempty" example:"user@example.com"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty" example:"2024-01-01T12:00:00Z"`
	RoleIDs         []string   `json:"role_ids"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

// BatchDeleteRequest carries a comma separated id list.
type BatchDeleteRequest struct {
	IDs string `json:"ids" form:"ids" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74,6a4f2f1e-1c7b-4a5e-a938-f1ed9b1fad10"`
}

func stringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("confirmation does not match")
		}
		return nil
	}
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID              string     `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Email           string     `json:"email" example:"user@example.com"`
	Name            *string    `json:"name,omitempty" example:"Jane Doe"`
	Status          string     `json:"status" example:"activated"`
	EmailVerifiedAt *time.Time `json:"email_verified_at" example:"2024-01-01T12:00:00Z"`
	Roles           []string   `json:"roles"`
	DisplayRoles    string     `json:"display_roles" example:"admin, member"`
	CreatedAt       time.Time  `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt       time.Time  `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

func toUserResponse(u *domain.User) UserResponse {
	roles := u.RoleNames()
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		Name:            u.Name,
		Status:          u.Status.String(),
		EmailVerifiedAt: u.EmailVerifiedAt,
		Roles:           roles,
		DisplayRoles:    strings.Join(roles, ", "),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string       `json:"token_type" example:"bearer"`
	ExpiresIn int64        `json:"expires_in" example:"3600"`
}

func toLoginResponse(result *service.LoginResult) LoginResponse {
	return LoginResponse{
		User:      toUserResponse(result.User),
		Token:     result.Token.Token,
		TokenType: result.Token.TokenType,
		ExpiresIn: result.Token.ExpiresIn,
	}
}

// PasswordResetEnvelope is returned by the token lookup endpoint.
type PasswordResetEnvelope struct {
	PasswordReset *domain.PasswordReset `json:"password_reset"`
}

// UserPageResponse follows the length-aware paginator layout.
type UserPageResponse struct {
	Data        []UserResponse `json:"data"`
	CurrentPage int            `json:"current_page" example:"1"`
	PerPage     int            `json:"per_page" example:"15"`
	Total       int64          `json:"total" example:"42"`
	LastPage    int            `json:"last_page" example:"3"`
}

// UsersListResponse wraps a page of users.
type UsersListResponse struct {
	Users UserPageResponse `json:"users"`
}

func toUsersListResponse(page *domain.UserPage) UsersListResponse {
	data := make([]UserResponse, 0, len(page.Users))
	for i := range page.Users {
		data = append(data, toUserResponse(&page.Users[i]))
	}
	return UsersListResponse{Users: UserPageResponse{
		Data:        data,
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
		LastPage:    page.LastPage(),
	}}
}
