package emotionHandler

import (
	"EmotionAPI/internal/api/emotion"
	"EmotionAPI/internal/entity"
	"EmotionAPI/internal/middleware"
	jwtPkg "EmotionAPI/pkg/jwt"
	"EmotionAPI/pkg/utils"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type fakeEmotionService struct {
	result    *emotion.DetectionResult
	err       error
	records   []entity.DetectionRecord
	lastImage string
}

func (f *fakeEmotionService) DetectEmotion(_ context.Context, imageData string) (*emotion.DetectionResult, error) {
	f.lastImage = imageData
	return f.result, f.err
}

func (f *fakeEmotionService) ProcessFrame(_ []byte) (*entity.StreamDetectionResult, error) {
	return nil, nil
}

func (f *fakeEmotionService) ListDetections(_ context.Context, _ int) ([]entity.DetectionRecord, error) {
	return f.records, nil
}

func (f *fakeEmotionService) GetDetection(_ context.Context, id string) (*entity.DetectionRecord, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, emotion.ErrDetectionNotFound
}

func newTestApp(svc *fakeEmotionService) *fiber.App {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	app := fiber.New()
	handler := New(logger, validator.New(), middleware.New(logger), svc, utils.New())
	handler.Start(app)

	return app
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("unmarshal response %q: %v", body, err)
	}
}

func TestDetectEmotionJSONRequest(t *testing.T) {
	svc := &fakeEmotionService{
		result: &emotion.DetectionResult{
			Emotion:          emotion.EmotionHappy,
			Confidence:       0.92,
			ProcessingTimeMs: 12,
			AllEmotions:      map[string]float64{"happy": 92, "neutral": 5, "sad": 3},
		},
	}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/detect-emotion", strings.NewReader(`{"image":"aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result emotion.DetectionResult
	decodeBody(t, resp, &result)

	if result.Emotion != emotion.EmotionHappy {
		t.Errorf("expected happy, got %q", result.Emotion)
	}
	if result.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %v", result.Confidence)
	}
	if svc.lastImage != "aGVsbG8=" {
		t.Errorf("service received wrong payload: %q", svc.lastImage)
	}
}

func TestDetectEmotionMissingImageField(t *testing.T) {
	app := newTestApp(&fakeEmotionService{})

	req := httptest.NewRequest(http.MethodPost, "/detect-emotion", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %q", body["code"])
	}
}

func TestDetectEmotionInvalidImagePayload(t *testing.T) {
	app := newTestApp(&fakeEmotionService{err: emotion.ErrInvalidImageData})

	req := httptest.NewRequest(http.MethodPost, "/detect-emotion", strings.NewReader(`{"image":"!!!"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["code"] != "INVALID_IMAGE" {
		t.Errorf("expected INVALID_IMAGE code, got %q", body["code"])
	}
}

func TestDetectEmotionMultipartUpload(t *testing.T) {
	svc := &fakeEmotionService{
		result: &emotion.DetectionResult{Emotion: emotion.EmotionNeutral, Confidence: 0.6},
	}
	app := newTestApp(svc)

	fileContent := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="frame.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/detect-emotion", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if svc.lastImage != base64.StdEncoding.EncodeToString(fileContent) {
		t.Errorf("service received wrong payload: %q", svc.lastImage)
	}
}

func TestDetectEmotionRequiresConfiguredAPIKey(t *testing.T) {
	t.Setenv("APP_API_KEY", "secret-key")
	t.Setenv("APP_API_KEY_HASH", "")

	app := newTestApp(&fakeEmotionService{
		result: &emotion.DetectionResult{Emotion: emotion.EmotionHappy, Confidence: 0.9},
	})

	req := httptest.NewRequest(http.MethodPost, "/detect-emotion", strings.NewReader(`{"image":"aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/detect-emotion", strings.NewReader(`{"image":"aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, "secret-key")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with key, got %d", resp.StatusCode)
	}
}

func TestListDetectionsRequiresToken(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	record := entity.DetectionRecord{
		ID:         "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Emotion:    emotion.EmotionSad,
		Confidence: 0.7,
		CreatedAt:  time.Now(),
	}
	app := newTestApp(&fakeEmotionService{records: []entity.DetectionRecord{record}})

	req := httptest.NewRequest(http.MethodGet, "/detections", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	token, _, err := jwtPkg.Sign(map[string]interface{}{"key_id": "abcdef0123456789"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/detections", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}

	var history emotion.HistoryResponse
	decodeBody(t, resp, &history)
	if len(history.Data) != 1 || history.Data[0].ID != record.ID {
		t.Errorf("unexpected history payload: %+v", history.Data)
	}
}

func TestGetDetectionNotFound(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	app := newTestApp(&fakeEmotionService{})

	token, _, err := jwtPkg.Sign(map[string]interface{}{"key_id": "abcdef0123456789"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/detections/unknown-id", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
