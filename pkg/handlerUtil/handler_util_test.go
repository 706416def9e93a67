package handlerUtil

import (
	"EmotionAPI/internal/api/auth"
	"EmotionAPI/internal/api/emotion"
	"EmotionAPI/pkg/response"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func handle(t *testing.T, err error) (int, map[string]string) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	h := New(logger)

	app := fiber.New()
	app.Get("/op", func(c *fiber.Ctx) error {
		return h.Handle(c, "req-id", err, c.Path(), "test_op")
	})

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/op", nil))
	if testErr != nil {
		t.Fatalf("app.Test: %v", testErr)
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		t.Fatalf("read body: %v", readErr)
	}

	var payload map[string]string
	if unmarshalErr := json.Unmarshal(body, &payload); unmarshalErr != nil {
		t.Fatalf("unmarshal %q: %v", body, unmarshalErr)
	}

	return resp.StatusCode, payload
}

func TestHandleSentinelMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "missing image", err: emotion.ErrMissingImageData, status: fiber.StatusBadRequest, code: "INVALID_IMAGE"},
		{name: "invalid image", err: emotion.ErrInvalidImageData, status: fiber.StatusBadRequest, code: "INVALID_IMAGE"},
		{name: "not an image", err: emotion.ErrNotAnImage, status: fiber.StatusBadRequest, code: "INVALID_IMAGE"},
		{name: "detection not found", err: emotion.ErrDetectionNotFound, status: fiber.StatusNotFound, code: "DETECTION_NOT_FOUND"},
		{name: "invalid api key", err: auth.ErrInvalidAPIKey, status: fiber.StatusUnauthorized, code: "INVALID_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := handle(t, tt.err)
			if status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, status)
			}
			if payload["code"] != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, payload["code"])
			}
		})
	}
}

func TestHandleGenericResponseError(t *testing.T) {
	status, payload := handle(t, response.NewError(fiber.StatusServiceUnavailable, "backend offline"))
	if status != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", status)
	}
	if payload["error"] != "backend offline" {
		t.Errorf("unexpected error body: %q", payload["error"])
	}
}

func TestHandleUnknownError(t *testing.T) {
	status, payload := handle(t, errors.New("boom"))
	if status != fiber.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	if payload["error"] != "An unexpected error occurred" {
		t.Errorf("unexpected error body: %q", payload["error"])
	}
}
