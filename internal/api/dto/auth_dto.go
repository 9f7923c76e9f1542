package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Nick     string `json:"nick" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Nick        string    `json:"nick"`
	Admin       bool      `json:"admin"`
}
