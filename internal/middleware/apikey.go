package middleware

import (
	"EmotionAPI/pkg/handlerUtil"
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

const APIKeyHeader = "X-API-Key"

const apiKeyRejection = "Unauthorized, missing or invalid API key"

// NewAPIKeyMiddleware enforces the shared-secret header when a key is
// configured. Deployments without APP_API_KEY or APP_API_KEY_HASH run open,
// which is the documented default.
func (m *middleware) NewAPIKeyMiddleware(ctx *fiber.Ctx) error {
	hashedKey := os.Getenv("APP_API_KEY_HASH")
	plainKey := os.Getenv("APP_API_KEY")

	if hashedKey == "" && plainKey == "" {
		return ctx.Next()
	}

	errHandler := handlerUtil.New(m.log)
	requestID := m.GetRequestID(ctx)

	provided := ctx.Get(APIKeyHeader)
	if provided == "" {
		return errHandler.HandleUnauthorized(ctx, requestID, apiKeyRejection)
	}

	if hashedKey != "" {
		if err := m.bcryptUtils.CompareSecret(hashedKey, provided); err != nil {
			return errHandler.HandleUnauthorized(ctx, requestID, apiKeyRejection)
		}
		return ctx.Next()
	}

	if subtle.ConstantTimeCompare([]byte(plainKey), []byte(provided)) != 1 {
		return errHandler.HandleUnauthorized(ctx, requestID, apiKeyRejection)
	}

	return ctx.Next()
}
