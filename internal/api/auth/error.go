package auth

import (
	"EmotionAPI/pkg/response"
	"net/http"
)

var (
	ErrInvalidAPIKey     = response.NewError(http.StatusUnauthorized, "invalid API key")
	ErrAuthNotConfigured = response.NewError(http.StatusServiceUnavailable, "API key authentication is not configured")
)
