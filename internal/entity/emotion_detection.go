package entity

import "time"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StreamDetectionResult is what the upstream frame-analysis service emits for
// one camera frame on the streaming path.
type StreamDetectionResult struct {
	Status       string    `json:"status"`
	Emotion      string    `json:"emotion,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	FacePosition *Position `json:"face_position,omitempty"`
	FaceSize     *float64  `json:"face_size,omitempty"`
	Instructions []string  `json:"instructions,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// DetectionRecord is a persisted emotion detection.
type DetectionRecord struct {
	ID               string             `json:"id"`
	RequestID        string             `json:"request_id"`
	Emotion          string             `json:"emotion"`
	Confidence       float64            `json:"confidence"`
	AllEmotions      map[string]float64 `json:"all_emotions,omitempty"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
	ImageSHA256      string             `json:"image_sha256"`
	SnapshotURL      string             `json:"snapshot_url,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}
