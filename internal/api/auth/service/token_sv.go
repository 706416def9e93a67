package authService

import (
	"EmotionAPI/internal/api/auth"
	contextPkg "EmotionAPI/pkg/context"
	jwtPkg "EmotionAPI/pkg/jwt"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"os"
	"time"

	"golang.org/x/net/context"
)

const (
	accessTokenTTL = time.Hour

	// tokenAudience names the surface the token grants: the detection
	// history API.
	tokenAudience = "detection-history"
)

func (s *authService) ExchangeAPIKey(ctx context.Context, apiKey string) (auth.TokenResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.verifyAPIKey(apiKey); err != nil {
		s.log.WithField("request_id", requestID).Warn("API key exchange rejected")
		return auth.TokenResponse{}, err
	}

	// The key ID lets history records be traced back to a rotated key
	// without ever storing the key itself.
	sum := sha256.Sum256([]byte(apiKey))
	keyID := hex.EncodeToString(sum[:8])

	token, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"key_id":     keyID,
		"issued_for": tokenAudience,
	}, accessTokenTTL)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	s.log.WithFields(map[string]interface{}{
		"request_id": requestID,
		"key_id":     keyID,
	}).Info("Issued access token")

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) verifyAPIKey(apiKey string) error {
	hashedKey := os.Getenv("APP_API_KEY_HASH")
	plainKey := os.Getenv("APP_API_KEY")

	switch {
	case hashedKey != "":
		if err := s.bcryptUtils.CompareSecret(hashedKey, apiKey); err != nil {
			return auth.ErrInvalidAPIKey
		}
	case plainKey != "":
		if subtle.ConstantTimeCompare([]byte(plainKey), []byte(apiKey)) != 1 {
			return auth.ErrInvalidAPIKey
		}
	default:
		return auth.ErrAuthNotConfigured
	}

	return nil
}
