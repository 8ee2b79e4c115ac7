package dto

import (
	"time"

	"github.com/spec-kit/site-auth/internal/domain"
)

// RegisterRequest is the signup form payload.
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChangeRequest payload for changing the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account. It never carries the password hash.
type UserResponse struct {
	ID        int64           `json:"id"`
	FullName  string          `json:"fullName"`
	Email     string          `json:"email"`
	UserType  domain.UserType `json:"userType"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CurrentUserResponse tells pages whether to show a sign-in button or the avatar.
type CurrentUserResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
	AvatarInitial string        `json:"avatarInitial,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		UserType:  u.UserType,
		CreatedAt: u.CreatedAt,
	}
}
