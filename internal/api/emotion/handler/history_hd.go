package emotionHandler

import (
	"EmotionAPI/internal/api/emotion"
	contextPkg "EmotionAPI/pkg/context"
	"EmotionAPI/pkg/handlerUtil"
	jwtPkg "EmotionAPI/pkg/jwt"
	"EmotionAPI/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *EmotionHandler) ListDetections(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	client, err := jwtPkg.GetClientData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	limit := ctx.QueryInt("limit")

	records, err := h.emotionService.ListDetections(c, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_detections")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"key_id":     client.KeyID,
			"count":      len(records),
		}).Debug("Listed detection records")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, emotion.HistoryResponse{
			Data: records,
		})
	}
}

func (h *EmotionHandler) GetDetection(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	client, err := jwtPkg.GetClientData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	id := ctx.Params("id")

	record, err := h.emotionService.GetDetection(c, id)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_detection")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"key_id":     client.KeyID,
			"detection":  record.ID,
		}).Debug("Fetched detection record")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, emotion.DetectionRecordResponse{
			Data: *record,
		})
	}
}
