package config

import (
	"EmotionAPI/database/postgres"
	authHandler "EmotionAPI/internal/api/auth/handler"
	authService "EmotionAPI/internal/api/auth/service"
	emotionHandler "EmotionAPI/internal/api/emotion/handler"
	emotionRepository "EmotionAPI/internal/api/emotion/repository"
	emotionService "EmotionAPI/internal/api/emotion/service"
	"EmotionAPI/internal/middleware"
	"EmotionAPI/pkg/bcrypt"
	"EmotionAPI/pkg/gemini"
	"EmotionAPI/pkg/openai"
	"EmotionAPI/pkg/redis"
	"EmotionAPI/pkg/s3"
	"EmotionAPI/pkg/utils"
	websocketPkg "EmotionAPI/pkg/websocket"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const serviceName = "emotion-detection-api"
const serviceVersion = "1.0.0"

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	bcryptUtils   bcrypt.IBcrypt
	handlers      []handler
	redisServer   redis.IRedis
	faceWebsocket websocketPkg.IWebsocket
	analyzer      emotionService.ImageAnalyzer
	s3Client      s3.ItfS3
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithWebSocket(webSocket websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.faceWebsocket = webSocket
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithClassifier selects the inference backend. Gemini is the default;
// EMOTION_BACKEND=openai switches to the OpenAI vision client.
func WithClassifier() ServerOption {
	return func(s *Server) error {
		if os.Getenv("EMOTION_BACKEND") == "openai" {
			s.analyzer = openai.NewVision()
			return nil
		}

		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.analyzer = client
		return nil
	}
}

// WithS3Client is optional: without a bucket name the service simply never
// archives frames.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Info("AWS_BUCKET_NAME not set, snapshot archiving disabled")
			}
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Emotion detection domain
	emotionRepo := emotionRepository.New(s.db, s.log)
	emotionServices := emotionService.NewEmotionService(s.log, s.analyzer, s.faceWebsocket, s.redisServer, emotionRepo, s.s3Client, s.utils)
	emotionHandlers := emotionHandler.New(s.log, s.validator, s.middleware, emotionServices, s.utils)

	// Token exchange
	authServices := authService.New(s.log, s.bcryptUtils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	s.handlers = append(s.handlers, emotionHandlers, authHandlers)
}

// mount installs middleware before any route so the info endpoints get
// request IDs and logging like everything else.
func (s *Server) mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	s.setupInfoRoutes()

	for _, h := range s.handlers {
		h.Start(s.engine)
	}
}

func (s *Server) Run() error {
	s.mount()

	port := os.Getenv("APP_PORT")
	if port == "" {
		// PaaS providers inject PORT.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupInfoRoutes() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"service": "Emotion Detection API",
			"version": serviceVersion,
			"endpoints": fiber.Map{
				"health":         "/health",
				"detect_emotion": "/detect-emotion (POST)",
			},
			"status": "running",
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":    "healthy",
			"service":   serviceName,
			"timestamp": time.Now().Unix(),
		})
	})
}
