package emotionHandler

import (
	emotionService "EmotionAPI/internal/api/emotion/service"
	"EmotionAPI/internal/middleware"
	"EmotionAPI/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EmotionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	emotionService emotionService.IEmotionService
	utils          utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	es emotionService.IEmotionService,
	utils utils.IUtils,
) *EmotionHandler {
	return &EmotionHandler{
		log:            log,
		validator:      validator,
		middleware:     middleware,
		emotionService: es,
		utils:          utils,
	}
}

func (h *EmotionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/detect-emotion", h.middleware.NewRateLimiter, h.middleware.NewAPIKeyMiddleware, h.DetectEmotion)

	stream := srv.Group("/detect-emotion")
	stream.Use("/ws", wsMiddleware)
	stream.Get("/ws", websocket.New(h.handleEmotionWebSocket))

	srv.Get("/detections", h.middleware.NewTokenMiddleware, h.ListDetections)
	srv.Get("/detections/:id", h.middleware.NewTokenMiddleware, h.GetDetection)
}
