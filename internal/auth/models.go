package auth

import (
	"time"

	"github.com/google/uuid"
)

// UserDTO is the public view of a user, never carries the password hash.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ChangePasswordRequest is the body of PUT /api/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest is the body of PUT /api/auth/profile.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
}

// AccountInfo summarizes account age for the profile view.
type AccountInfo struct {
	DaysSinceCreation int  `json:"daysSinceCreation"`
	IsRecentAccount   bool `json:"isRecentAccount"`
}

// ProfileResponse is the payload of GET /api/auth/profile.
type ProfileResponse struct {
	User        UserDTO     `json:"user"`
	AccountInfo AccountInfo `json:"accountInfo"`
}

// VerifyTokenRequest is the body of POST /api/auth/verify-token.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyTokenResult reports token validity without ever failing the request.
type VerifyTokenResult struct {
	IsValid bool     `json:"isValid"`
	User    *UserDTO `json:"user,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/account.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}
