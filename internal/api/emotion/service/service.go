package emotionService

import (
	"EmotionAPI/internal/api/emotion"
	emotionRepository "EmotionAPI/internal/api/emotion/repository"
	"EmotionAPI/internal/entity"
	"EmotionAPI/pkg/redis"
	"EmotionAPI/pkg/s3"
	"EmotionAPI/pkg/utils"
	websocketPkg "EmotionAPI/pkg/websocket"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// ImageAnalyzer is satisfied by both the Gemini and the OpenAI vision
// clients; the active backend is chosen at wiring time.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error)
}

type IEmotionService interface {
	DetectEmotion(ctx context.Context, imageData string) (*emotion.DetectionResult, error)
	ProcessFrame(frame []byte) (*entity.StreamDetectionResult, error)
	ListDetections(ctx context.Context, limit int) ([]entity.DetectionRecord, error)
	GetDetection(ctx context.Context, id string) (*entity.DetectionRecord, error)
}

type emotionService struct {
	log          *logrus.Logger
	analyzer     ImageAnalyzer
	websocketPkg websocketPkg.IWebsocket
	cache        redis.IRedis
	repository   emotionRepository.Repository
	s3Client     s3.ItfS3
	utils        utils.IUtils
}

func NewEmotionService(
	log *logrus.Logger,
	analyzer ImageAnalyzer,
	websocket websocketPkg.IWebsocket,
	cache redis.IRedis,
	repository emotionRepository.Repository,
	s3Client s3.ItfS3,
	utils utils.IUtils,
) IEmotionService {
	return &emotionService{
		log:          log,
		analyzer:     analyzer,
		websocketPkg: websocket,
		cache:        cache,
		repository:   repository,
		s3Client:     s3Client,
		utils:        utils,
	}
}
