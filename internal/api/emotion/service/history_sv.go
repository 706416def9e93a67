package emotionService

import (
	"EmotionAPI/internal/entity"

	"golang.org/x/net/context"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (s *emotionService) ListDetections(ctx context.Context, limit int) ([]entity.DetectionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	client, err := s.repository.NewClient(false)
	if err != nil {
		return nil, err
	}

	records, err := client.Detections.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	s.presignSnapshots(records)

	return records, nil
}

func (s *emotionService) GetDetection(ctx context.Context, id string) (*entity.DetectionRecord, error) {
	client, err := s.repository.NewClient(false)
	if err != nil {
		return nil, err
	}

	record, err := client.Detections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.presignSnapshot(&record)

	return &record, nil
}

// presignSnapshots swaps stored object URLs for short-lived presigned ones so
// history consumers can fetch archived frames from a private bucket.
func (s *emotionService) presignSnapshots(records []entity.DetectionRecord) {
	for i := range records {
		s.presignSnapshot(&records[i])
	}
}

func (s *emotionService) presignSnapshot(record *entity.DetectionRecord) {
	if s.s3Client == nil || record.SnapshotURL == "" {
		return
	}

	presigned, err := s.s3Client.PresignUrl(record.SnapshotURL)
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("Failed to presign snapshot URL")
		return
	}
	record.SnapshotURL = presigned
}
