package emotionRepository

import (
	"EmotionAPI/internal/api/emotion"
	"EmotionAPI/internal/entity"
	contextPkg "EmotionAPI/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type DetectionDB struct {
	ID               sql.NullString  `db:"id"`
	RequestID        sql.NullString  `db:"request_id"`
	Emotion          sql.NullString  `db:"emotion"`
	Confidence       sql.NullFloat64 `db:"confidence"`
	AllEmotions      []byte          `db:"all_emotions"`
	ProcessingTimeMs sql.NullInt64   `db:"processing_time_ms"`
	ImageSHA256      sql.NullString  `db:"image_sha256"`
	SnapshotURL      sql.NullString  `db:"snapshot_url"`
	CreatedAt        sql.NullTime    `db:"created_at"`
}

func (r *detectionRepository) CreateDetection(c context.Context, record entity.DetectionRecord) error {
	requestID := contextPkg.GetRequestID(c)

	scores, err := json.Marshal(record.AllEmotions)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal emotion scores for CreateDetection")
		return err
	}

	argsKV := map[string]interface{}{
		"id":                 record.ID,
		"request_id":         record.RequestID,
		"emotion":            record.Emotion,
		"confidence":         record.Confidence,
		"all_emotions":       scores,
		"processing_time_ms": record.ProcessingTimeMs,
		"image_sha256":       record.ImageSHA256,
		"snapshot_url":       record.SnapshotURL,
		"created_at":         record.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateDetection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateDetection")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to insert detection record")
		return err
	}

	return nil
}

func (r *detectionRepository) GetByID(c context.Context, id string) (entity.DetectionRecord, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryGetDetectionByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for GetByID")
		return entity.DetectionRecord{}, err
	}
	query = r.q.Rebind(query)

	var row DetectionDB
	if err := sqlx.GetContext(c, r.q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.DetectionRecord{}, emotion.ErrDetectionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to query detection record")
		return entity.DetectionRecord{}, err
	}

	return row.toEntity(), nil
}

func (r *detectionRepository) ListRecent(c context.Context, limit int) ([]entity.DetectionRecord, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryListRecentDetections, map[string]interface{}{"limit": limit})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for ListRecent")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []DetectionDB
	if err := sqlx.SelectContext(c, r.q, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to list detection records")
		return nil, err
	}

	records := make([]entity.DetectionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}

	return records, nil
}

func (d DetectionDB) toEntity() entity.DetectionRecord {
	record := entity.DetectionRecord{
		ID:               d.ID.String,
		RequestID:        d.RequestID.String,
		Emotion:          d.Emotion.String,
		Confidence:       d.Confidence.Float64,
		ProcessingTimeMs: d.ProcessingTimeMs.Int64,
		ImageSHA256:      d.ImageSHA256.String,
		SnapshotURL:      d.SnapshotURL.String,
		CreatedAt:        d.CreatedAt.Time,
	}

	if len(d.AllEmotions) > 0 {
		var scores map[string]float64
		if err := json.Unmarshal(d.AllEmotions, &scores); err == nil {
			record.AllEmotions = scores
		}
	}

	return record
}
