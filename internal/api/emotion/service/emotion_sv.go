package emotionService

import (
	"EmotionAPI/internal/api/emotion"
	"EmotionAPI/internal/entity"
	contextPkg "EmotionAPI/pkg/context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const emotionPrompt = `
Analyze the facial expression of the most prominent face in this image and
score each emotion from 0 to 100. The scores do not need to sum to 100.

Return ONLY a JSON object in exactly this format, with no additional text:
{
	"happy": 0,
	"neutral": 0,
	"sad": 0,
	"angry": 0,
	"fear": 0,
	"surprise": 0,
	"disgust": 0
}

If the image contains no detectable face, score "neutral" as 50 and every
other emotion as 0.
`

const (
	cacheKeyPrefix = "emotion:"
	cacheTTL       = time.Hour
	jpegQuality    = 90
)

func (s *emotionService) DetectEmotion(ctx context.Context, imageData string) (*emotion.DetectionResult, error) {
	start := time.Now()

	if imageData == "" {
		return nil, emotion.ErrMissingImageData
	}

	raw, err := base64.StdEncoding.DecodeString(s.utils.StripDataURLPrefix(imageData))
	if err != nil {
		return nil, emotion.ErrInvalidImageData
	}

	sum := sha256.Sum256(raw)
	imageSHA := hex.EncodeToString(sum[:])

	if cached := s.lookupCache(ctx, imageSHA); cached != nil {
		cached.ProcessingTimeMs = elapsedMs(start)
		return cached, nil
	}

	prepared, err := s.utils.PrepareImageForInference(raw, jpegQuality)
	if err != nil {
		return nil, emotion.ErrNotAnImage
	}

	text, err := s.analyzer.AnalyzeImage(ctx, base64.StdEncoding.EncodeToString(prepared), emotionPrompt)
	if err != nil {
		return s.fallbackResult(ctx, err, start), nil
	}

	scores, err := parseEmotionScores(text)
	if err != nil {
		return s.fallbackResult(ctx, err, start), nil
	}

	mapped := collapseEmotionScores(scores)
	dominant, confidence := dominantEmotion(mapped)

	result := &emotion.DetectionResult{
		Emotion:          dominant,
		Confidence:       confidence,
		ProcessingTimeMs: elapsedMs(start),
		AllEmotions:      mapped,
	}

	s.storeCache(ctx, imageSHA, result)
	s.saveDetection(ctx, result, imageSHA, prepared)

	return result, nil
}

func (s *emotionService) ProcessFrame(frame []byte) (*entity.StreamDetectionResult, error) {
	result, err := s.websocketPkg.ProcessEmotionFrame(frame)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseEmotionScores extracts the JSON object from the model response, which
// may be wrapped in markdown fences or prose.
func parseEmotionScores(response string) (map[string]float64, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	var scores map[string]float64
	if err := json.Unmarshal([]byte(jsonStr), &scores); err != nil {
		return nil, err
	}

	if len(scores) == 0 {
		return nil, errors.New("model returned no emotion scores")
	}

	return scores, nil
}

// collapseEmotionScores maps the raw classifier scores onto the public
// 3-label set. Anger and fear lean negative, so they partially fold into sad.
func collapseEmotionScores(scores map[string]float64) map[string]float64 {
	return map[string]float64{
		emotion.EmotionHappy:   scores["happy"],
		emotion.EmotionNeutral: scores["neutral"],
		emotion.EmotionSad:     scores["sad"] + scores["angry"]*0.5 + scores["fear"]*0.3,
	}
}

// dominantEmotion picks the highest-scoring label. Ties resolve in the fixed
// order of emotion.Labels so repeated identical input yields the same label.
func dominantEmotion(mapped map[string]float64) (string, float64) {
	dominant := emotion.EmotionNeutral
	best := math.Inf(-1)

	for _, label := range emotion.Labels {
		if score := mapped[label]; score > best {
			dominant = label
			best = score
		}
	}

	confidence := math.Round(best) / 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return dominant, confidence
}

// fallbackResult is the documented no-face / model-failure behavior: a
// neutral low-confidence classification with the reason attached, returned
// with a success status so clients keep their polling loop simple.
func (s *emotionService) fallbackResult(ctx context.Context, cause error, start time.Time) *emotion.DetectionResult {
	s.log.WithFields(map[string]interface{}{
		"request_id": contextPkg.GetRequestID(ctx),
		"error":      cause.Error(),
	}).Warn("Emotion inference failed, returning neutral fallback")

	return &emotion.DetectionResult{
		Emotion:          emotion.EmotionNeutral,
		Confidence:       0.5,
		ProcessingTimeMs: elapsedMs(start),
		Error:            cause.Error(),
	}
}

func (s *emotionService) lookupCache(ctx context.Context, imageSHA string) *emotion.DetectionResult {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.GetDetection(ctx, cacheKeyPrefix+imageSHA)
	if err != nil {
		return nil
	}

	var result emotion.DetectionResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil
	}

	return &result
}

func (s *emotionService) storeCache(ctx context.Context, imageSHA string, result *emotion.DetectionResult) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := s.cache.SetDetection(ctx, cacheKeyPrefix+imageSHA, string(payload), cacheTTL); err != nil {
		s.log.WithField("error", err.Error()).Warn("Failed to cache detection result")
	}
}

// saveDetection records the detection for the history API. Best effort: a
// failed write never fails the detection itself.
func (s *emotionService) saveDetection(ctx context.Context, result *emotion.DetectionResult, imageSHA string, frame []byte) {
	if s.repository == nil {
		return
	}

	requestID := contextPkg.GetRequestID(ctx)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithField("error", err.Error()).Error("Failed to generate detection ID")
		return
	}

	record := entity.DetectionRecord{
		ID:               id,
		RequestID:        requestID,
		Emotion:          result.Emotion,
		Confidence:       result.Confidence,
		AllEmotions:      result.AllEmotions,
		ProcessingTimeMs: result.ProcessingTimeMs,
		ImageSHA256:      imageSHA,
		CreatedAt:        time.Now(),
	}

	if s.s3Client != nil && os.Getenv("SNAPSHOT_BUCKET_ENABLED") == "true" {
		url, err := s.s3Client.UploadSnapshot(frame, "image/jpeg")
		if err != nil {
			s.log.WithFields(map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to archive detection snapshot")
		} else {
			record.SnapshotURL = url
		}
	}

	client, err := s.repository.NewClient(false)
	if err != nil {
		s.log.WithField("error", err.Error()).Error("Failed to create repository client")
		return
	}

	if err := client.Detections.CreateDetection(ctx, record); err != nil {
		s.log.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to persist detection record")

		// Without the record nothing references the snapshot, so
		// remove it rather than leak it in the bucket.
		if record.SnapshotURL != "" {
			if delErr := s.s3Client.DeleteFile(record.SnapshotURL); delErr != nil {
				s.log.WithFields(map[string]interface{}{
					"request_id": requestID,
					"error":      delErr.Error(),
				}).Warn("Failed to remove orphaned snapshot")
			}
		}
	}
}

func elapsedMs(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
