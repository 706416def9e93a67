package emotionRepository

const (
	queryCreateDetection = `
INSERT INTO Detections (id, request_id, emotion, confidence, all_emotions, processing_time_ms, image_sha256, snapshot_url, created_at)
VALUES (:id, :request_id, :emotion, :confidence, :all_emotions, :processing_time_ms, :image_sha256, :snapshot_url, :created_at)`

	queryGetDetectionByID = `
SELECT id, request_id, emotion, confidence, all_emotions, processing_time_ms, image_sha256, snapshot_url, created_at
FROM Detections
    WHERE id = :id`

	queryListRecentDetections = `
SELECT id, request_id, emotion, confidence, all_emotions, processing_time_ms, image_sha256, snapshot_url, created_at
FROM Detections
ORDER BY created_at DESC
LIMIT :limit`
)
