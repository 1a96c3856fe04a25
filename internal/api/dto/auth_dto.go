package dto

import "time"

// TokenRequest exchanges the gateway API key for an access token.
type TokenRequest struct {
	Gateway string `json:"gateway"`
	APIKey  string `json:"api_key"`
}

// TokenResponse carries the issued JWT.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
