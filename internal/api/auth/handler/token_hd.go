package authHandler

import (
	"EmotionAPI/internal/api/auth"
	contextPkg "EmotionAPI/pkg/context"
	"EmotionAPI/pkg/handlerUtil"
	"EmotionAPI/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *AuthHandler) HandleIssueToken(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req auth.TokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	token, err := h.authService.ExchangeAPIKey(c, req.APIKey)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "exchange_api_key")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
		}).Info("Access token issued")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, token)
	}
}
