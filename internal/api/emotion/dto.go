package emotion

import "EmotionAPI/internal/entity"

const (
	EmotionHappy   = "happy"
	EmotionNeutral = "neutral"
	EmotionSad     = "sad"
)

// Labels is the public label set of the detection endpoint. The classifier
// scores a wider raw set which is collapsed onto these three.
var Labels = []string{EmotionHappy, EmotionNeutral, EmotionSad}

type DetectionRequest struct {
	Image string `json:"image" validate:"required"`
}

type DetectionResult struct {
	Emotion          string             `json:"emotion"`
	Confidence       float64            `json:"confidence"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	AllEmotions      map[string]float64 `json:"all_emotions,omitempty"`
	Error            string             `json:"error,omitempty"`
}

type HistoryResponse struct {
	Data []entity.DetectionRecord `json:"data"`
}

type DetectionRecordResponse struct {
	Data entity.DetectionRecord `json:"data"`
}
