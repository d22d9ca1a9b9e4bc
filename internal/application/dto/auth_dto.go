package dto

// SignInRequest is the credential sign-in input.
type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the sanitized user projection returned with a token pair.
type UserInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// SessionResult is the sign-in / renewal output.
type SessionResult struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserInfo `json:"user"`
}

// LogoutRequest optionally carries the refresh token to revoke alongside the
// bearer access token.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest rotates a user's password.
type ChangePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
